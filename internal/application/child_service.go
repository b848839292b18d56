package application

import (
	"context"
	"time"

	"github.com/krisztak/kidevent/internal/domain/user"
)

type ChildService struct {
	childRepo user.ChildRepository
}

func NewChildService(childRepo user.ChildRepository) *ChildService {
	return &ChildService{childRepo: childRepo}
}

// CreateChild は保護者に子どもを登録する
func (s *ChildService) CreateChild(ctx context.Context, parentID, name string, birthDate *time.Time) (*user.Child, error) {
	c := user.NewChild(parentID, name, birthDate)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.childRepo.Create(ctx, c); err != nil {
		return nil, storageError("子ども登録", err)
	}
	return c, nil
}

// ListChildren は保護者の子ども一覧を返す
func (s *ChildService) ListChildren(ctx context.Context, parentID string) ([]*user.Child, error) {
	children, err := s.childRepo.ListByParentID(ctx, parentID)
	if err != nil {
		return nil, storageError("子ども一覧取得", err)
	}
	return children, nil
}
