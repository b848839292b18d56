package transaction

import "context"

// Tx はトランザクションを表すインターフェース
// ドメイン層がインフラ層（sqlx等）に依存しないようにするための抽象化
type Tx interface {
	// Commit はトランザクションをコミットする
	Commit() error
	// Rollback はトランザクションをロールバックする
	Rollback() error
}

// Manager はトランザクションを管理するインターフェース
type Manager interface {
	// Begin は新しいトランザクションを開始する
	Begin(ctx context.Context) (Tx, error)
}

// Run は fn をトランザクション内で実行する
// fn がエラーを返した場合やパニックした場合はロールバックし、成功時のみコミットする
func Run(ctx context.Context, m Manager, fn func(tx Tx) error) error {
	tx, err := m.Begin(ctx)
	if err != nil {
		return &BeginError{Err: err}
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return &CommitError{Err: err}
	}
	return nil
}

// BeginError はトランザクション開始の失敗を表す
type BeginError struct{ Err error }

func (e *BeginError) Error() string { return "トランザクション開始に失敗: " + e.Err.Error() }
func (e *BeginError) Unwrap() error { return e.Err }

// CommitError はコミットの失敗を表す
type CommitError struct{ Err error }

func (e *CommitError) Error() string { return "コミットに失敗: " + e.Err.Error() }
func (e *CommitError) Unwrap() error { return e.Err }
