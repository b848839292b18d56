package application

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/krisztak/kidevent/internal/domain/event"
	"github.com/krisztak/kidevent/internal/domain/registration"
	"github.com/krisztak/kidevent/internal/domain/transaction"
	"github.com/krisztak/kidevent/internal/domain/user"
)

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockEventRepository implements event.Repository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, e *event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*event.Event, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventRepository) List(ctx context.Context, filter event.ListFilter) ([]*event.Event, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventRepository) Update(ctx context.Context, tx transaction.Tx, e *event.Event) error {
	args := m.Called(ctx, tx, e)
	return args.Error(0)
}

func (m *MockEventRepository) AddRemainingSeats(ctx context.Context, tx transaction.Tx, id string, delta int) error {
	args := m.Called(ctx, tx, id, delta)
	return args.Error(0)
}

func (m *MockEventRepository) UpdateStatus(ctx context.Context, id string, status event.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockRegistrationRepository implements registration.Repository
type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) Create(ctx context.Context, tx transaction.Tx, r *registration.Registration) error {
	args := m.Called(ctx, tx, r)
	return args.Error(0)
}

func (m *MockRegistrationRepository) ExistsForChild(ctx context.Context, tx transaction.Tx, eventID, childID string) (bool, error) {
	args := m.Called(ctx, tx, eventID, childID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistrationRepository) ExistsForParent(ctx context.Context, tx transaction.Tx, eventID, parentID string) (bool, error) {
	args := m.Called(ctx, tx, eventID, parentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*registration.Registration, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registration.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) ListByParentID(ctx context.Context, parentID string, limit, offset int) ([]*registration.Registration, error) {
	args := m.Called(ctx, parentID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registration.Registration), args.Error(1)
}

// MockChildRepository implements user.ChildRepository
type MockChildRepository struct {
	mock.Mock
}

func (m *MockChildRepository) Create(ctx context.Context, c *user.Child) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockChildRepository) GetByID(ctx context.Context, id string) (*user.Child, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.Child), args.Error(1)
}

func (m *MockChildRepository) ListByParentID(ctx context.Context, parentID string) ([]*user.Child, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.Child), args.Error(1)
}

// MockLocker implements RegistrationLocker
type MockLocker struct {
	mock.Mock
	released int
}

func (m *MockLocker) Lock(ctx context.Context, eventID, registrantKey string) (func(context.Context) error, error) {
	args := m.Called(ctx, eventID, registrantKey)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	releaseErr, _ := args.Get(0).(error)
	return func(context.Context) error {
		m.released++
		return releaseErr
	}, nil
}
