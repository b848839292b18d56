package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/krisztak/kidevent/internal/domain/event"
	"github.com/krisztak/kidevent/internal/domain/transaction"
)

const eventColumns = `id, name, location, start_at, duration_minutes, max_seats, remaining_seats,
	credits_required, cutoff_hours, extra_services, allowed_registrants, status, editing, deleted,
	created_at, updated_at`

// extraServiceJSON は extra_services カラム（JSONB）の要素
type extraServiceJSON struct {
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
}

type extraServices []extraServiceJSON

// Value は driver.Valuer を実装する
func (s extraServices) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// Scan は sql.Scanner を実装する
func (s *extraServices) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return fmt.Errorf("extra_services の型が不正です: %T", src)
}

// eventRow はDBの行を表す構造体
type eventRow struct {
	ID                 string        `db:"id"`
	Name               string        `db:"name"`
	Location           *string       `db:"location"`
	StartAt            time.Time     `db:"start_at"`
	DurationMinutes    int           `db:"duration_minutes"`
	MaxSeats           int           `db:"max_seats"`
	RemainingSeats     int           `db:"remaining_seats"`
	CreditsRequired    int           `db:"credits_required"`
	CutoffHours        int           `db:"cutoff_hours"`
	ExtraServices      extraServices `db:"extra_services"`
	AllowedRegistrants string        `db:"allowed_registrants"`
	Status             string        `db:"status"`
	Editing            bool          `db:"editing"`
	Deleted            bool          `db:"deleted"`
	CreatedAt          time.Time     `db:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at"`
}

// toEntity はeventRowをEventエンティティに変換する
func (r *eventRow) toEntity() *event.Event {
	var location string
	if r.Location != nil {
		location = *r.Location
	}
	var services []event.ExtraService
	if len(r.ExtraServices) > 0 {
		services = make([]event.ExtraService, len(r.ExtraServices))
		for i, s := range r.ExtraServices {
			services[i] = event.ExtraService{Description: s.Description, PriceCents: s.PriceCents, Currency: s.Currency}
		}
	}
	return &event.Event{
		ID:                 r.ID,
		Name:               r.Name,
		Location:           location,
		StartAt:            r.StartAt,
		Duration:           time.Duration(r.DurationMinutes) * time.Minute,
		MaxSeats:           r.MaxSeats,
		RemainingSeats:     r.RemainingSeats,
		CreditsRequired:    r.CreditsRequired,
		CutoffHours:        r.CutoffHours,
		ExtraServices:      services,
		AllowedRegistrants: event.AllowedRegistrants(r.AllowedRegistrants),
		Status:             event.Status(r.Status),
		Editing:            r.Editing,
		Deleted:            r.Deleted,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func toExtraServices(src []event.ExtraService) extraServices {
	out := make(extraServices, len(src))
	for i, s := range src {
		out[i] = extraServiceJSON{Description: s.Description, PriceCents: s.PriceCents, Currency: s.Currency}
	}
	return out
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// EventRepository はイベントリポジトリのPostgreSQL実装
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create は新しいイベントを作成する
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO events (name, location, start_at, duration_minutes, max_seats, remaining_seats,
			credits_required, cutoff_hours, extra_services, allowed_registrants, status, editing, deleted,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		e.Name, nullableString(e.Location), e.StartAt, int(e.Duration/time.Minute), e.MaxSeats, e.RemainingSeats,
		e.CreditsRequired, e.CutoffHours, toExtraServices(e.ExtraServices), string(e.AllowedRegistrants),
		string(e.Status), e.Editing, e.Deleted, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	if !isUUID(id) {
		return nil, event.ErrEventNotFound
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var row eventRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByIDForUpdate はイベント行を FOR UPDATE でロックして取得する
// 同じイベントへの申込・編集はコミットまで直列化される
func (r *EventRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*event.Event, error) {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return nil, err
	}
	if !isUUID(id) {
		return nil, event.ErrEventNotFound
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`

	var row eventRow
	if err := sqlTx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベントのロック取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// List はイベント一覧を取得する
func (r *EventRepository) List(ctx context.Context, filter event.ListFilter) ([]*event.Event, error) {
	var conds []string
	if !filter.IncludeDeleted {
		conds = append(conds, "deleted = FALSE")
	}
	if !filter.IncludeEditing {
		conds = append(conds, "editing = FALSE")
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	query := `SELECT ` + eventColumns + ` FROM events ` + where + ` ORDER BY start_at ASC, id ASC LIMIT $1 OFFSET $2`

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, filter.Limit, filter.Offset); err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
	}

	events := make([]*event.Event, len(rows))
	for i := range rows {
		events[i] = rows[i].toEntity()
	}
	return events, nil
}

// Update はイベントを更新する
func (r *EventRepository) Update(ctx context.Context, tx transaction.Tx, e *event.Event) error {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}
	query := `
		UPDATE events
		SET name = $1, location = $2, start_at = $3, duration_minutes = $4, max_seats = $5,
		    remaining_seats = $6, credits_required = $7, cutoff_hours = $8, extra_services = $9,
		    allowed_registrants = $10, status = $11, editing = $12, deleted = $13, updated_at = $14
		WHERE id = $15
	`
	result, err := sqlTx.ExecContext(ctx, query,
		e.Name, nullableString(e.Location), e.StartAt, int(e.Duration/time.Minute), e.MaxSeats,
		e.RemainingSeats, e.CreditsRequired, e.CutoffHours, toExtraServices(e.ExtraServices),
		string(e.AllowedRegistrants), string(e.Status), e.Editing, e.Deleted, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("イベント更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

// AddRemainingSeats は残席数に差分を加算する
// 範囲チェックと加算を1つのUPDATE文で行うため、アプリ側で読んだ値を書き戻さない
func (r *EventRepository) AddRemainingSeats(ctx context.Context, tx transaction.Tx, id string, delta int) error {
	sqlTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}
	query := `
		UPDATE events
		SET remaining_seats = remaining_seats + $1, updated_at = NOW()
		WHERE id = $2 AND remaining_seats + $1 BETWEEN 0 AND max_seats
	`
	result, err := sqlTx.ExecContext(ctx, query, delta, id)
	if err != nil {
		return fmt.Errorf("残席数の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		if delta < 0 {
			return event.ErrEventFull
		}
		return event.ErrInvalidRemainingSeats
	}
	return nil
}

// UpdateStatus は保存済みステータスを更新する
func (r *EventRepository) UpdateStatus(ctx context.Context, id string, status event.Status) error {
	result, err := r.db.ExecContext(ctx, `UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("ステータス更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

// インターフェースを満たしているか確認
var _ event.Repository = (*EventRepository)(nil)
