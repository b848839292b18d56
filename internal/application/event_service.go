package application

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/krisztak/kidevent/internal/domain/event"
	"github.com/krisztak/kidevent/internal/domain/transaction"
	"github.com/krisztak/kidevent/internal/domain/user"
	"github.com/krisztak/kidevent/internal/pkg/logger"
	"github.com/krisztak/kidevent/internal/pkg/metrics"
)

// ステータス再計算で1回に読み込むイベント数
const refreshPageSize = 100

type EventService struct {
	txManager       transaction.Manager
	eventRepo       event.Repository
	refreshParallel int
	now             func() time.Time
}

func NewEventService(txManager transaction.Manager, eventRepo event.Repository) *EventService {
	return &EventService{
		txManager:       txManager,
		eventRepo:       eventRepo,
		refreshParallel: 4,
		now:             time.Now,
	}
}

// WithRefreshParallelism はステータス再計算の同時更新数を設定する
func (s *EventService) WithRefreshParallelism(n int) *EventService {
	if n > 0 {
		s.refreshParallel = n
	}
	return s
}

// CreateEvent はイベントを作成する（残席数は定員、ステータスは open）
func (s *EventService) CreateEvent(ctx context.Context, f event.Fields) (*event.Event, error) {
	e := event.NewEvent(f)
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, storageError("イベント作成", err)
	}
	logger.Info("イベントを作成しました", zap.String("event_id", e.ID), zap.Int("max_seats", e.MaxSeats))
	return s.withDerivedStatus(e), nil
}

// GetEvent はイベントを取得する
// 管理者以外には削除済み・編集中のイベントは存在しないものとして扱う
func (s *EventService) GetEvent(ctx context.Context, identity user.Identity, id string) (*event.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageError("イベント取得", err)
	}
	if !e.VisibleTo(identity.IsAdmin()) {
		return nil, event.ErrEventNotFound
	}
	return s.withDerivedStatus(e), nil
}

type ListEventsInput struct {
	Status         event.Status // 空の場合は絞り込まない
	IncludeDeleted bool         // 管理者のみ有効
	Limit          int
	Offset         int
}

// ListEvents はイベント一覧を返す
// ステータスは取得時点で導出し、Status 指定時は導出後の値で絞り込む
func (s *EventService) ListEvents(ctx context.Context, identity user.Identity, input ListEventsInput) ([]*event.Event, error) {
	if input.Status != "" && !input.Status.IsValid() {
		return nil, event.ErrInvalidStatus
	}
	limit, offset := normalizePage(input.Limit, input.Offset)

	filter := event.ListFilter{Limit: limit, Offset: offset}
	if identity.IsAdmin() {
		filter.IncludeDeleted = input.IncludeDeleted
		filter.IncludeEditing = true
	}

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, storageError("イベント一覧取得", err)
	}

	result := make([]*event.Event, 0, len(events))
	for _, e := range events {
		e = s.withDerivedStatus(e)
		if input.Status != "" && e.Status != input.Status {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

// BeginEditing はイベントを編集中にする
func (s *EventService) BeginEditing(ctx context.Context, id string) (*event.Event, error) {
	return s.modify(ctx, id, func(e *event.Event) error {
		e.BeginEditing()
		return nil
	})
}

// ApplyEdit は編集内容を反映する（publish / save / delete）
func (s *EventService) ApplyEdit(ctx context.Context, id string, f event.Fields, action event.EditAction) (*event.Event, error) {
	e, err := s.modify(ctx, id, func(e *event.Event) error {
		return e.ApplyEdit(f, action)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("イベントを編集しました", zap.String("event_id", id), zap.String("action", string(action)))
	return e, nil
}

// DeleteEvent はイベントを論理削除する
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	_, err := s.ApplyEdit(ctx, id, event.Fields{}, event.ActionDelete)
	return err
}

// RestoreEvent は論理削除を取り消す
func (s *EventService) RestoreEvent(ctx context.Context, id string) (*event.Event, error) {
	return s.modify(ctx, id, func(e *event.Event) error {
		e.Restore()
		e.Status = e.CurrentStatus(s.now())
		return nil
	})
}

// modify はイベント行をロックした状態で fn を適用して保存する
func (s *EventService) modify(ctx context.Context, id string, fn func(e *event.Event) error) (*event.Event, error) {
	var updated *event.Event
	err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		e, err := s.eventRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return storageError("イベント取得", err)
		}
		if err := fn(e); err != nil {
			return err
		}
		if err := s.eventRepo.Update(ctx, tx, e); err != nil {
			return storageError("イベント更新", err)
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}
	return s.withDerivedStatus(updated), nil
}

// RefreshResult はステータス再計算の結果
type RefreshResult struct {
	Updated   int
	Unchanged int
	Failed    int
}

// RefreshStatuses は削除済み・編集中以外のイベントについて、保存済みステータスを現在の導出値に更新する
// 個々の更新失敗はログに残して続行し、一覧取得に失敗した場合のみエラーを返す
func (s *EventService) RefreshStatuses(ctx context.Context) (RefreshResult, error) {
	now := s.now()
	var updated, unchanged, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.refreshParallel)

	var listErr error
	for offset := 0; ; offset += refreshPageSize {
		page, err := s.eventRepo.List(gctx, event.ListFilter{Limit: refreshPageSize, Offset: offset})
		if err != nil {
			listErr = storageError("イベント一覧取得", err)
			break
		}
		for _, e := range page {
			next := e.CurrentStatus(now)
			if next == e.Status {
				unchanged.Add(1)
				continue
			}
			id, prev := e.ID, e.Status
			g.Go(func() error {
				if err := s.eventRepo.UpdateStatus(gctx, id, next); err != nil {
					failed.Add(1)
					logger.Warn("ステータス更新に失敗しました", zap.String("event_id", id), zap.Error(err))
					return nil
				}
				updated.Add(1)
				logger.Debug("ステータスを更新しました",
					zap.String("event_id", id),
					zap.String("from", string(prev)),
					zap.String("to", string(next)),
				)
				return nil
			})
		}
		if len(page) < refreshPageSize {
			break
		}
	}
	_ = g.Wait()

	result := RefreshResult{
		Updated:   int(updated.Load()),
		Unchanged: int(unchanged.Load()),
		Failed:    int(failed.Load()),
	}
	metrics.ObserveStatusRefresh("updated", result.Updated)
	metrics.ObserveStatusRefresh("unchanged", result.Unchanged)
	metrics.ObserveStatusRefresh("failed", result.Failed)
	return result, listErr
}

// withDerivedStatus は現在時刻で導出したステータスを設定する
func (s *EventService) withDerivedStatus(e *event.Event) *event.Event {
	e.Status = e.CurrentStatus(s.now())
	return e
}
