package registration

import (
	"sort"
	"time"

	"github.com/krisztak/kidevent/internal/domain/user"
)

// Kind は申込の種類（子どもの申込 / 保護者本人の申込）
type Kind string

const (
	KindChild Kind = "child"
	KindSelf  Kind = "self"
)

// Registrant は申込を行う主体
// ChildID が空の場合は保護者本人の申込として扱う
type Registrant struct {
	ParentID string
	Role     user.Role
	ChildID  string
}

// Kind は申込の種類を返す
func (r Registrant) Kind() Kind {
	if r.ChildID != "" {
		return KindChild
	}
	return KindSelf
}

// Registration は申込エンティティを表す
type Registration struct {
	ID             string
	EventID        string
	ParentID       string
	ChildID        *string // 保護者本人の申込の場合は nil
	ServiceIndices []int
	CreditsCost    int
	ServicesCost   int64 // 最小通貨単位
	RegisteredAt   time.Time
}

// NewRegistration は新しい申込を作成する
func NewRegistration(eventID string, r Registrant, serviceIndices []int, creditsCost int, servicesCost int64) *Registration {
	reg := &Registration{
		EventID:        eventID,
		ParentID:       r.ParentID,
		ServiceIndices: normalizeIndices(serviceIndices),
		CreditsCost:    creditsCost,
		ServicesCost:   servicesCost,
		RegisteredAt:   time.Now(),
	}
	if r.ChildID != "" {
		childID := r.ChildID
		reg.ChildID = &childID
	}
	return reg
}

// IsChildRegistration は子どもの申込かを返す
func (r *Registration) IsChildRegistration() bool {
	return r.ChildID != nil
}

// Validate は申込の検証を行う
func (r *Registration) Validate() error {
	if r.EventID == "" {
		return ErrEventIDRequired
	}
	if r.ParentID == "" {
		return ErrParentIDRequired
	}
	if r.CreditsCost < 0 || r.ServicesCost < 0 {
		return ErrInvalidCost
	}
	return nil
}

// normalizeIndices は重複を除いて昇順に並べる
func normalizeIndices(indices []int) []int {
	seen := make(map[int]struct{}, len(indices))
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
