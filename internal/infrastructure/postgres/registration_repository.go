package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/krisztak/kidevent/internal/domain/registration"
	"github.com/krisztak/kidevent/internal/domain/transaction"
)

// registrationRow はDBの行を表す構造体
type registrationRow struct {
	ID             string        `db:"id"`
	EventID        string        `db:"event_id"`
	ParentID       string        `db:"parent_id"`
	ChildID        *string       `db:"child_id"`
	ServiceIndices pq.Int64Array `db:"service_indices"`
	CreditsCost    int           `db:"credits_cost"`
	ServicesCost   int64         `db:"services_cost"`
	RegisteredAt   time.Time     `db:"registered_at"`
}

func (r *registrationRow) toEntity() *registration.Registration {
	indices := make([]int, len(r.ServiceIndices))
	for i, v := range r.ServiceIndices {
		indices[i] = int(v)
	}
	return &registration.Registration{
		ID:             r.ID,
		EventID:        r.EventID,
		ParentID:       r.ParentID,
		ChildID:        r.ChildID,
		ServiceIndices: indices,
		CreditsCost:    r.CreditsCost,
		ServicesCost:   r.ServicesCost,
		RegisteredAt:   r.RegisteredAt,
	}
}

func toInt64Array(indices []int) pq.Int64Array {
	out := make(pq.Int64Array, len(indices))
	for i, v := range indices {
		out[i] = int64(v)
	}
	return out
}

// RegistrationRepository は申込リポジトリのPostgreSQL実装
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository はRegistrationRepositoryを作成する
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create は申込を作成する
func (r *RegistrationRepository) Create(ctx context.Context, tx transaction.Tx, reg *registration.Registration) error {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO registrations (event_id, parent_id, child_id, service_indices, credits_cost, services_cost, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err = sqlTx.QueryRowContext(ctx, query,
		reg.EventID, reg.ParentID, reg.ChildID, toInt64Array(reg.ServiceIndices),
		reg.CreditsCost, reg.ServicesCost, reg.RegisteredAt,
	).Scan(&reg.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return registration.ErrAlreadyRegistered
		}
		return fmt.Errorf("申込作成に失敗しました: %w", err)
	}
	return nil
}

// ExistsForChild は（イベント, 子ども）の申込が存在するかを返す
func (r *RegistrationRepository) ExistsForChild(ctx context.Context, tx transaction.Tx, eventID, childID string) (bool, error) {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return false, err
	}
	if !isUUID(childID) {
		return false, nil
	}
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM registrations WHERE event_id = $1 AND child_id = $2)`
	if err := sqlTx.GetContext(ctx, &exists, query, eventID, childID); err != nil {
		return false, fmt.Errorf("申込の重複確認に失敗しました: %w", err)
	}
	return exists, nil
}

// ExistsForParent は保護者本人の申込が存在するかを返す
func (r *RegistrationRepository) ExistsForParent(ctx context.Context, tx transaction.Tx, eventID, parentID string) (bool, error) {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return false, err
	}
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM registrations WHERE event_id = $1 AND parent_id = $2 AND child_id IS NULL)`
	if err := sqlTx.GetContext(ctx, &exists, query, eventID, parentID); err != nil {
		return false, fmt.Errorf("申込の重複確認に失敗しました: %w", err)
	}
	return exists, nil
}

// ListByEventID はイベントの申込一覧を取得する
func (r *RegistrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*registration.Registration, error) {
	query := `
		SELECT id, event_id, parent_id, child_id, service_indices, credits_cost, services_cost, registered_at
		FROM registrations
		WHERE event_id = $1
		ORDER BY registered_at ASC
	`
	var rows []registrationRow
	if err := r.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, fmt.Errorf("申込一覧取得に失敗しました: %w", err)
	}
	return toRegistrations(rows), nil
}

// ListByParentID は保護者の申込一覧を取得する
func (r *RegistrationRepository) ListByParentID(ctx context.Context, parentID string, limit, offset int) ([]*registration.Registration, error) {
	query := `
		SELECT id, event_id, parent_id, child_id, service_indices, credits_cost, services_cost, registered_at
		FROM registrations
		WHERE parent_id = $1
		ORDER BY registered_at DESC
		LIMIT $2 OFFSET $3
	`
	var rows []registrationRow
	if err := r.db.SelectContext(ctx, &rows, query, parentID, limit, offset); err != nil {
		return nil, fmt.Errorf("申込一覧取得に失敗しました: %w", err)
	}
	return toRegistrations(rows), nil
}

func toRegistrations(rows []registrationRow) []*registration.Registration {
	out := make([]*registration.Registration, len(rows))
	for i := range rows {
		out[i] = rows[i].toEntity()
	}
	return out
}

var _ registration.Repository = (*RegistrationRepository)(nil)
