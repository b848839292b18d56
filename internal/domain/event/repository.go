package event

import (
	"context"

	"github.com/krisztak/kidevent/internal/domain/transaction"
)

// ListFilter はイベント一覧の取得条件
type ListFilter struct {
	IncludeDeleted bool
	IncludeEditing bool
	Limit          int
	Offset         int
}

// Repository はイベントリポジトリのインターフェース
type Repository interface {
	// Create は新しいイベントを作成する
	Create(ctx context.Context, event *Event) error

	// GetByID はIDからイベントを取得する（論理削除済みも含む）
	GetByID(ctx context.Context, id string) (*Event, error)

	// GetByIDForUpdate はイベント行をロックして取得する（トランザクション必須）
	GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Event, error)

	// List はイベント一覧を取得する
	List(ctx context.Context, filter ListFilter) ([]*Event, error)

	// Update はイベントを更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, event *Event) error

	// AddRemainingSeats は残席数に差分をアトミックに加算する（トランザクション必須）
	// 結果が 0〜定員 の範囲外になる場合は更新せずエラーを返す
	AddRemainingSeats(ctx context.Context, tx transaction.Tx, id string, delta int) error

	// UpdateStatus は保存済みステータスのみを書き換える
	UpdateStatus(ctx context.Context, id string, status Status) error
}
