package application

import (
	"errors"
	"fmt"

	"github.com/krisztak/kidevent/internal/domain/registration"
	"github.com/krisztak/kidevent/internal/domain/transaction"
)

var (
	// ErrPermissionDenied はロールが操作を許可されていない場合のエラー
	ErrPermissionDenied = errors.New("この操作を行う権限がありません")
)

// storageError はリポジトリ呼び出しのエラーを分類する
// ドメインの拒否理由（NotFound、満席など）はそのまま返し、それ以外は ErrStorageFailure でラップする
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if registration.ReasonOf(err) != registration.ReasonStorageFailure {
		return err
	}
	if errors.Is(err, registration.ErrStorageFailure) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", registration.ErrStorageFailure, op, err)
}

// txError はトランザクションの開始・コミット失敗を ErrStorageFailure に変換する
// fn が返したエラーは既に分類済みのためそのまま返す
func txError(err error) error {
	var beginErr *transaction.BeginError
	var commitErr *transaction.CommitError
	if errors.As(err, &beginErr) || errors.As(err, &commitErr) {
		return fmt.Errorf("%w: %w", registration.ErrStorageFailure, err)
	}
	return err
}
