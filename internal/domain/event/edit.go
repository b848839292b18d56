package event

import (
	"fmt"
	"time"
)

// EditAction は管理者の編集操作を表す
type EditAction string

const (
	// ActionPublish は編集内容を公開する（editing → open）
	ActionPublish EditAction = "publish"
	// ActionSave は下書き保存する（editing のまま一般ユーザーには非表示）
	ActionSave EditAction = "save"
	// ActionDelete は論理削除する
	ActionDelete EditAction = "delete"
)

// ParseEditAction は文字列をEditActionに変換する
func ParseEditAction(s string) (EditAction, error) {
	switch a := EditAction(s); a {
	case ActionPublish, ActionSave, ActionDelete:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidEditAction, s)
}

// BeginEditing はイベントを編集中にする
// どの状態からでも遷移でき、時刻や残席からは導出されない
func (e *Event) BeginEditing() {
	e.Editing = true
	e.Status = StatusEditing
	e.UpdatedAt = time.Now()
}

// ApplyEdit は編集内容を反映し、アクションに応じて状態を遷移させる
// エラー時はイベントを変更しない
func (e *Event) ApplyEdit(f Fields, action EditAction) error {
	next := *e
	switch action {
	case ActionDelete:
		next.Deleted = true
	case ActionPublish, ActionSave:
		if err := next.applyFields(f); err != nil {
			return err
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if action == ActionPublish {
			next.Editing = false
			next.Status = StatusOpen
		} else {
			next.Editing = true
			next.Status = StatusEditing
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidEditAction, action)
	}
	next.UpdatedAt = time.Now()
	*e = next
	return nil
}

// Restore は論理削除を取り消す
// 以降のステータスは通常の導出規則に従う
func (e *Event) Restore() {
	e.Deleted = false
	e.UpdatedAt = time.Now()
}

// applyFields は編集項目を反映する
// 定員を変更した場合も申込済みの席数は維持する
func (e *Event) applyFields(f Fields) error {
	booked := e.BookedSeats()
	remaining := f.MaxSeats - booked
	if f.MaxSeats > 0 && remaining < 0 {
		return ErrMaxSeatsBelowBooked
	}
	e.Name = f.Name
	e.Location = f.Location
	e.StartAt = f.StartAt
	e.Duration = f.Duration
	e.MaxSeats = f.MaxSeats
	e.RemainingSeats = remaining
	e.CreditsRequired = f.CreditsRequired
	e.CutoffHours = f.CutoffHours
	e.ExtraServices = copyServices(f.ExtraServices)
	e.AllowedRegistrants = f.AllowedRegistrants
	return nil
}
