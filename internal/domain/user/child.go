package user

import (
	"context"
	"time"
)

// Child は保護者に紐づく子どもを表す
type Child struct {
	ID        string
	ParentID  string
	Name      string
	BirthDate *time.Time
	CreatedAt time.Time
}

// NewChild は新しい子どもを作成する
func NewChild(parentID, name string, birthDate *time.Time) *Child {
	return &Child{
		ParentID:  parentID,
		Name:      name,
		BirthDate: birthDate,
		CreatedAt: time.Now(),
	}
}

// Validate は子どもの検証を行う
func (c *Child) Validate() error {
	if c.ParentID == "" {
		return ErrParentIDRequired
	}
	if c.Name == "" {
		return ErrChildNameRequired
	}
	return nil
}

// BelongsTo は指定した保護者の子どもかを返す
func (c *Child) BelongsTo(parentID string) bool {
	return c.ParentID == parentID
}

// ChildRepository は子どもリポジトリのインターフェース
type ChildRepository interface {
	// Create は新しい子どもを登録する
	Create(ctx context.Context, child *Child) error

	// GetByID はIDから子どもを取得する
	GetByID(ctx context.Context, id string) (*Child, error)

	// ListByParentID は保護者の子ども一覧を取得する
	ListByParentID(ctx context.Context, parentID string) ([]*Child, error)
}
