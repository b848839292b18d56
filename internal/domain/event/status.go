package event

import (
	"fmt"
	"time"
)

// Status はイベントの表示用ステータスを表す
type Status string

const (
	StatusOpen               Status = "open"
	StatusRegistrationClosed Status = "registration_closed"
	StatusFull               Status = "full"
	StatusPast               Status = "past"
	StatusEditing            Status = "editing"
)

// ParseStatus は文字列をStatusに変換する（未知の値は拒否）
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// IsValid はステータスが定義済みの値かを返す
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusRegistrationClosed, StatusFull, StatusPast, StatusEditing:
		return true
	}
	return false
}

// DeriveStatus は開始時刻・締切時間・残席数・編集フラグと現在時刻からステータスを導出する
// 上から順に評価し、最初に一致したものを返す
func DeriveStatus(startAt time.Time, cutoffHours, remainingSeats int, editing bool, now time.Time) Status {
	switch {
	case editing:
		return StatusEditing
	case !now.Before(startAt):
		return StatusPast
	case remainingSeats <= 0:
		return StatusFull
	case now.After(cutoffAt(startAt, cutoffHours)):
		return StatusRegistrationClosed
	default:
		return StatusOpen
	}
}

func cutoffAt(startAt time.Time, cutoffHours int) time.Time {
	return startAt.Add(-time.Duration(cutoffHours) * time.Hour)
}
