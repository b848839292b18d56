package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/krisztak/kidevent/internal/domain/user"
)

type childRow struct {
	ID        string       `db:"id"`
	ParentID  string       `db:"parent_id"`
	Name      string       `db:"name"`
	BirthDate sql.NullTime `db:"birth_date"`
	CreatedAt time.Time    `db:"created_at"`
}

func (r *childRow) toEntity() *user.Child {
	c := &user.Child{
		ID:        r.ID,
		ParentID:  r.ParentID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
	}
	if r.BirthDate.Valid {
		d := r.BirthDate.Time
		c.BirthDate = &d
	}
	return c
}

// ChildRepository は子どもリポジトリのPostgreSQL実装
type ChildRepository struct {
	db *sqlx.DB
}

// NewChildRepository はChildRepositoryを作成する
func NewChildRepository(db *sqlx.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

// Create は子どもを登録する
func (r *ChildRepository) Create(ctx context.Context, c *user.Child) error {
	var birthDate sql.NullTime
	if c.BirthDate != nil {
		birthDate = sql.NullTime{Time: *c.BirthDate, Valid: true}
	}
	query := `INSERT INTO children (parent_id, name, birth_date, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, c.ParentID, c.Name, birthDate, c.CreatedAt).Scan(&c.ID); err != nil {
		return fmt.Errorf("子どもの登録に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDから子どもを取得する
func (r *ChildRepository) GetByID(ctx context.Context, id string) (*user.Child, error) {
	if !isUUID(id) {
		return nil, user.ErrChildNotFound
	}
	var row childRow
	query := `SELECT id, parent_id, name, birth_date, created_at FROM children WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrChildNotFound
		}
		return nil, fmt.Errorf("子どもの取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// ListByParentID は保護者の子ども一覧を取得する
func (r *ChildRepository) ListByParentID(ctx context.Context, parentID string) ([]*user.Child, error) {
	var rows []childRow
	query := `SELECT id, parent_id, name, birth_date, created_at FROM children WHERE parent_id = $1 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &rows, query, parentID); err != nil {
		return nil, fmt.Errorf("子ども一覧の取得に失敗しました: %w", err)
	}
	children := make([]*user.Child, len(rows))
	for i := range rows {
		children[i] = rows[i].toEntity()
	}
	return children, nil
}

var _ user.ChildRepository = (*ChildRepository)(nil)
