package api

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/krisztak/kidevent/internal/domain/event"
)

var (
	ErrInvalidPrice = errors.New("金額の形式が不正です")
	ErrInvalidTime  = errors.New("日時の形式が不正です")
)

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(event.MaxPriceCents)
)

// ParsePrice は "10.50" のような金額文字列を最小通貨単位（1050）に変換する
// 負の値、小数第3位以下を含む値、上限（event.MaxPriceCents）を超える値は拒否する
func ParsePrice(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidPrice
	}
	cents := d.Mul(hundred)
	if d.IsNegative() || !cents.IsInteger() || cents.GreaterThan(maxCents) {
		return 0, ErrInvalidPrice
	}
	return cents.IntPart(), nil
}

// FormatPrice は最小通貨単位の金額を小数2桁の文字列にする
func FormatPrice(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// ParseTime はRFC3339形式の日時を解析する
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return t, nil
}
