package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/krisztak/kidevent/internal/application"
	"github.com/krisztak/kidevent/internal/pkg/logger"
)

// StatusRefreshService は保存済みステータスを導出値に合わせるサービス
type StatusRefreshService interface {
	RefreshStatuses(ctx context.Context) (application.RefreshResult, error)
}

// StatusRefresher はイベントの保存済みステータスを定期的に更新するワーカー
// 表示時は常に導出するため、保存済みの値は一覧の参考情報として扱う
type StatusRefresher struct {
	service  StatusRefreshService
	interval time.Duration
	log      *zap.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// DefaultInterval は interval に0以下が渡された場合の実行間隔
const DefaultInterval = time.Minute

// NewStatusRefresher は新しいワーカーを作成する
func NewStatusRefresher(service StatusRefreshService, interval time.Duration) *StatusRefresher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &StatusRefresher{
		service:  service,
		interval: interval,
		log:      logger.Component("status_refresher"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はワーカーを開始する（Stop または ctx のキャンセルまでブロックする）
// 起動直後に1回実行し、その後は interval ごとに実行する
func (r *StatusRefresher) Start(ctx context.Context) {
	r.log.Info("ステータス更新ワーカー開始", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	r.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			r.log.Info("ステータス更新ワーカー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			r.log.Info("ステータス更新ワーカー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Stop はワーカーを停止し、実行中の更新の完了を待つ
func (r *StatusRefresher) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.doneCh
}

func (r *StatusRefresher) refresh(ctx context.Context) {
	start := time.Now()
	result, err := r.service.RefreshStatuses(ctx)
	if err != nil {
		r.log.Error("ステータス更新に失敗しました", zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.Int("updated", result.Updated),
		zap.Int("unchanged", result.Unchanged),
		zap.Int("failed", result.Failed),
		zap.Duration("elapsed", time.Since(start)),
	}
	switch {
	case result.Failed > 0:
		r.log.Warn("一部のステータス更新に失敗しました", fields...)
	case result.Updated > 0:
		r.log.Info("ステータスを更新しました", fields...)
	default:
		r.log.Debug("ステータスの変化なし", fields...)
	}
}
