package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound             = errors.New("イベントが見つかりません")
	ErrEventNameRequired         = errors.New("イベント名は必須です")
	ErrInvalidMaxSeats           = errors.New("定員は1以上である必要があります")
	ErrInvalidRemainingSeats     = errors.New("残席数は0以上かつ定員以下である必要があります")
	ErrInvalidCreditsRequired    = errors.New("必要クレジットは0以上である必要があります")
	ErrInvalidCutoffHours        = errors.New("締切時間は0以上である必要があります")
	ErrInvalidDuration           = errors.New("所要時間は0以上である必要があります")
	ErrInvalidStartAt            = errors.New("開始時刻は必須です")
	ErrInvalidAllowedRegistrants = errors.New("参加者区分が不正です")
	ErrInvalidExtraService       = errors.New("追加サービスの内容が不正です")
	ErrInvalidStatus             = errors.New("ステータスが不正です")
	ErrInvalidEditAction         = errors.New("編集アクションが不正です")
	ErrMaxSeatsBelowBooked       = errors.New("定員を申込済みの席数より少なくすることはできません")
	ErrEventFull                 = errors.New("イベントは満席です")
	ErrRegistrationClosed        = errors.New("イベントの申込受付は締め切られました")
)
