package registration

import "errors"

// Registration ドメインのエラー定義
var (
	ErrRegistrationNotFound     = errors.New("申込が見つかりません")
	ErrRegistrantTypeNotAllowed = errors.New("このイベントはこの参加者区分での申込を受け付けていません")
	ErrAlreadyRegistered        = errors.New("既に申込済みです")
	ErrRegistrationInProgress   = errors.New("同じ申込が処理中です")
	ErrStorageFailure           = errors.New("ストレージ操作に失敗しました")
	ErrEventIDRequired          = errors.New("イベントIDは必須です")
	ErrParentIDRequired         = errors.New("保護者IDは必須です")
	ErrInvalidCost              = errors.New("費用は0以上である必要があります")
)
