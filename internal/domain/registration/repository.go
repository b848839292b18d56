package registration

import (
	"context"

	"github.com/krisztak/kidevent/internal/domain/transaction"
)

// Repository は申込リポジトリのインターフェース
type Repository interface {
	// Create は新しい申込を作成する（トランザクション必須）
	// 一意制約違反の場合は ErrAlreadyRegistered を返す
	Create(ctx context.Context, tx transaction.Tx, registration *Registration) error

	// ExistsForChild は（イベント, 子ども）の申込が存在するかを返す
	ExistsForChild(ctx context.Context, tx transaction.Tx, eventID, childID string) (bool, error)

	// ExistsForParent は（イベント, 保護者, 子どもなし）の申込が存在するかを返す
	ExistsForParent(ctx context.Context, tx transaction.Tx, eventID, parentID string) (bool, error)

	// ListByEventID はイベントの申込一覧を取得する
	ListByEventID(ctx context.Context, eventID string) ([]*Registration, error)

	// ListByParentID は保護者の申込一覧を取得する
	ListByParentID(ctx context.Context, parentID string, limit, offset int) ([]*Registration, error)
}
