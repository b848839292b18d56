package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/krisztak/kidevent/internal/domain/event"
	"github.com/krisztak/kidevent/internal/domain/registration"
	"github.com/krisztak/kidevent/internal/domain/transaction"
	"github.com/krisztak/kidevent/internal/domain/user"
	redisinfra "github.com/krisztak/kidevent/internal/infrastructure/redis"
	"github.com/krisztak/kidevent/internal/pkg/logger"
	"github.com/krisztak/kidevent/internal/pkg/metrics"
)

// RegistrationLocker は同じ申込者による同時申込を排他する
// 取得できない場合は redisinfra.ErrLockNotAcquired を返す
type RegistrationLocker interface {
	Lock(ctx context.Context, eventID, registrantKey string) (func(context.Context) error, error)
}

type RegistrationService struct {
	txManager        transaction.Manager
	eventRepo        event.Repository
	registrationRepo registration.Repository
	childRepo        user.ChildRepository
	locker           RegistrationLocker
	now              func() time.Time
}

// NewRegistrationService は申込サービスを作成する
// locker は nil でもよい（その場合はDBの行ロックと一意制約のみで整合性を保つ）
func NewRegistrationService(txManager transaction.Manager, eventRepo event.Repository, registrationRepo registration.Repository, childRepo user.ChildRepository, locker RegistrationLocker) *RegistrationService {
	return &RegistrationService{
		txManager:        txManager,
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		childRepo:        childRepo,
		locker:           locker,
		now:              time.Now,
	}
}

type AdmitRegistrationInput struct {
	EventID        string
	Registrant     registration.Registrant
	ServiceIndices []int
}

// AdmitRegistration は申込を受け付ける
//
// 以下の順に検証し、最初に失敗した理由を返す:
//  1. イベントが存在し削除されていない。編集中は管理者のみ（NotFound）
//  2. 残席がある（EventFull）
//  3. 締切前である（RegistrationClosed）
//  4. 参加者区分が許可されている（RegistrantTypeNotAllowed）
//  5. 同じ子ども／保護者本人の申込がない（AlreadyRegistered）
//  6. 子どもが申込者の子どもである（NotFound）
//
// 検証と残席の更新は同じトランザクション内でイベント行をロックして行う。
func (s *RegistrationService) AdmitRegistration(ctx context.Context, input AdmitRegistrationInput) (result *registration.Registration, err error) {
	defer func() {
		metrics.ObserveRegistration(string(registration.ReasonOf(err)))
	}()

	registrant := input.Registrant
	kind := registrant.Kind()

	if s.locker != nil {
		release, lockErr := s.locker.Lock(ctx, input.EventID, registrantKey(registrant))
		switch {
		case lockErr == nil:
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					logger.Warn("申込ロックの解放に失敗しました",
						zap.String("event_id", input.EventID),
						zap.Error(err),
					)
				}
			}()
		case errors.Is(lockErr, redisinfra.ErrLockNotAcquired):
			return nil, registration.ErrRegistrationInProgress
		default:
			// Redis障害時はDBの行ロックと一意制約のみで続行する
			logger.Warn("申込ロックを取得できませんでした",
				zap.String("event_id", input.EventID),
				zap.Error(lockErr),
			)
		}
	}

	now := s.now()
	var created *registration.Registration
	err = transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		ev, err := s.eventRepo.GetByIDForUpdate(ctx, tx, input.EventID)
		if err != nil {
			return storageError("イベント取得", err)
		}
		if ev.Deleted || !ev.VisibleTo(registrant.Role == user.RoleAdmin) {
			return event.ErrEventNotFound
		}
		if !ev.HasRemainingSeats() {
			return event.ErrEventFull
		}
		if !ev.IsRegistrationOpenAt(now) {
			return event.ErrRegistrationClosed
		}
		if !ev.AllowedRegistrants.Allows(kind == registration.KindChild) {
			return registration.ErrRegistrantTypeNotAllowed
		}

		if err := s.checkNotRegistered(ctx, tx, ev.ID, registrant); err != nil {
			return err
		}

		if kind == registration.KindChild {
			child, err := s.childRepo.GetByID(ctx, registrant.ChildID)
			if err != nil {
				return storageError("子ども取得", err)
			}
			if !child.BelongsTo(registrant.ParentID) {
				return user.ErrChildNotFound
			}
		}

		reg := registration.NewRegistration(
			ev.ID,
			registrant,
			input.ServiceIndices,
			ev.CreditsRequired,
			registration.ServicesCost(ev.ExtraServices, input.ServiceIndices),
		)
		reg.RegisteredAt = now
		if err := reg.Validate(); err != nil {
			return err
		}

		if err := s.registrationRepo.Create(ctx, tx, reg); err != nil {
			return storageError("申込作成", err)
		}
		if delta := registration.SeatDelta(kind, registrant.Role); delta != 0 {
			if err := s.eventRepo.AddRemainingSeats(ctx, tx, ev.ID, delta); err != nil {
				return storageError("残席更新", err)
			}
		}
		created = reg
		return nil
	})
	if err != nil {
		err = txError(err)
		if registration.ReasonOf(err) == registration.ReasonStorageFailure {
			logger.Error("申込処理に失敗しました",
				zap.String("event_id", input.EventID),
				zap.String("parent_id", registrant.ParentID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	logger.Info("申込を受け付けました",
		zap.String("registration_id", created.ID),
		zap.String("event_id", created.EventID),
		zap.String("kind", string(kind)),
	)
	return created, nil
}

func (s *RegistrationService) checkNotRegistered(ctx context.Context, tx transaction.Tx, eventID string, r registration.Registrant) error {
	var (
		exists bool
		err    error
	)
	if r.Kind() == registration.KindChild {
		exists, err = s.registrationRepo.ExistsForChild(ctx, tx, eventID, r.ChildID)
	} else {
		exists, err = s.registrationRepo.ExistsForParent(ctx, tx, eventID, r.ParentID)
	}
	if err != nil {
		return storageError("重複確認", err)
	}
	if exists {
		return registration.ErrAlreadyRegistered
	}
	return nil
}

// registrantKey はロックキーに使う申込者の識別子
func registrantKey(r registration.Registrant) string {
	if r.Kind() == registration.KindChild {
		return string(registration.KindChild) + ":" + r.ChildID
	}
	return string(registration.KindSelf) + ":" + r.ParentID
}

// ListMyRegistrations は保護者自身の申込一覧を返す
func (s *RegistrationService) ListMyRegistrations(ctx context.Context, parentID string, limit, offset int) ([]*registration.Registration, error) {
	limit, offset = normalizePage(limit, offset)
	regs, err := s.registrationRepo.ListByParentID(ctx, parentID, limit, offset)
	if err != nil {
		return nil, storageError("申込一覧取得", err)
	}
	return regs, nil
}

// ListEventRegistrations はイベントの申込一覧を返す（管理者・スタッフのみ）
func (s *RegistrationService) ListEventRegistrations(ctx context.Context, identity user.Identity, eventID string) ([]*registration.Registration, error) {
	if !identity.Role.IsSupervisor() {
		return nil, ErrPermissionDenied
	}
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, storageError("イベント取得", err)
	}
	regs, err := s.registrationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, storageError("申込一覧取得", err)
	}
	return regs, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
