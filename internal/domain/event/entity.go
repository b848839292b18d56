package event

import "time"

// AllowedRegistrants はイベントに申込できる参加者区分を表す
type AllowedRegistrants string

const (
	// AllowAttendee は子どもの申込のみ受け付ける
	AllowAttendee AllowedRegistrants = "attendee"
	// AllowUser は保護者本人の申込のみ受け付ける
	AllowUser AllowedRegistrants = "user"
	// AllowBoth は両方を受け付ける
	AllowBoth AllowedRegistrants = "both"
)

// IsValid は定義済みの区分かを返す
func (a AllowedRegistrants) IsValid() bool {
	switch a {
	case AllowAttendee, AllowUser, AllowBoth:
		return true
	}
	return false
}

// Allows は子どもの申込（withChild=true）または保護者本人の申込を受け付けるかを返す
func (a AllowedRegistrants) Allows(withChild bool) bool {
	if withChild {
		return a == AllowAttendee || a == AllowBoth
	}
	return a == AllowUser || a == AllowBoth
}

// MaxPriceCents は追加サービス1件あたりの価格の上限（1,000,000.00）
const MaxPriceCents int64 = 100_000_000

// ExtraService はイベントの追加サービス（送迎、軽食など）
// 価格は通貨の最小単位（セント等）で保持する
type ExtraService struct {
	Description string
	PriceCents  int64
	Currency    string
}

// Event はイベントエンティティを表す
type Event struct {
	ID                 string
	Name               string
	Location           string
	StartAt            time.Time
	Duration           time.Duration
	MaxSeats           int
	RemainingSeats     int
	CreditsRequired    int
	CutoffHours        int
	ExtraServices      []ExtraService
	AllowedRegistrants AllowedRegistrants
	Status             Status // 保存されたステータス（表示前に必ず再計算する）
	Editing            bool
	Deleted            bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Fields は管理者が作成・編集できる項目
type Fields struct {
	Name               string
	Location           string
	StartAt            time.Time
	Duration           time.Duration
	MaxSeats           int
	CreditsRequired    int
	CutoffHours        int
	ExtraServices      []ExtraService
	AllowedRegistrants AllowedRegistrants
}

// NewEvent は新しいイベントを作成する
func NewEvent(f Fields) *Event {
	now := time.Now()
	return &Event{
		Name:               f.Name,
		Location:           f.Location,
		StartAt:            f.StartAt,
		Duration:           f.Duration,
		MaxSeats:           f.MaxSeats,
		RemainingSeats:     f.MaxSeats,
		CreditsRequired:    f.CreditsRequired,
		CutoffHours:        f.CutoffHours,
		ExtraServices:      copyServices(f.ExtraServices),
		AllowedRegistrants: f.AllowedRegistrants,
		Status:             StatusOpen,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.Name == "" {
		return ErrEventNameRequired
	}
	if e.StartAt.IsZero() {
		return ErrInvalidStartAt
	}
	if e.Duration < 0 {
		return ErrInvalidDuration
	}
	if e.MaxSeats <= 0 {
		return ErrInvalidMaxSeats
	}
	if e.RemainingSeats < 0 || e.RemainingSeats > e.MaxSeats {
		return ErrInvalidRemainingSeats
	}
	if e.CreditsRequired < 0 {
		return ErrInvalidCreditsRequired
	}
	if e.CutoffHours < 0 {
		return ErrInvalidCutoffHours
	}
	if !e.AllowedRegistrants.IsValid() {
		return ErrInvalidAllowedRegistrants
	}
	for _, s := range e.ExtraServices {
		if s.Description == "" || s.Currency == "" || s.PriceCents < 0 || s.PriceCents > MaxPriceCents {
			return ErrInvalidExtraService
		}
	}
	return nil
}

// CurrentStatus は現在時刻に基づいてステータスを導出する
func (e *Event) CurrentStatus(now time.Time) Status {
	return DeriveStatus(e.StartAt, e.CutoffHours, e.RemainingSeats, e.Editing, now)
}

// CutoffAt は申込締切時刻を返す
func (e *Event) CutoffAt() time.Time {
	return cutoffAt(e.StartAt, e.CutoffHours)
}

// IsRegistrationOpenAt は締切前（締切時刻ちょうどを含む）かを返す
func (e *Event) IsRegistrationOpenAt(now time.Time) bool {
	return !now.After(e.CutoffAt())
}

// HasRemainingSeats は残席があるかを返す
func (e *Event) HasRemainingSeats() bool {
	return e.RemainingSeats > 0
}

// BookedSeats は消費済みの席数を返す
func (e *Event) BookedSeats() int {
	return e.MaxSeats - e.RemainingSeats
}

// VisibleTo は一般ユーザー（admin=false）に表示してよいかを返す
// 削除済み・編集中のイベントは管理者にのみ表示する
func (e *Event) VisibleTo(admin bool) bool {
	if admin {
		return true
	}
	return !e.Deleted && !e.Editing
}

// EndAt は終了時刻を返す
func (e *Event) EndAt() time.Time {
	return e.StartAt.Add(e.Duration)
}

func copyServices(src []ExtraService) []ExtraService {
	if src == nil {
		return nil
	}
	dst := make([]ExtraService, len(src))
	copy(dst, src)
	return dst
}
