package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"github.com/krisztak/kidevent/internal/application"
	"github.com/krisztak/kidevent/internal/domain/event"
	"github.com/krisztak/kidevent/internal/domain/registration"
	"github.com/krisztak/kidevent/internal/domain/user"
)

// MockEventService はEventServiceInterfaceのモック
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) CreateEvent(ctx context.Context, f event.Fields) (*event.Event, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) GetEvent(ctx context.Context, identity user.Identity, id string) (*event.Event, error) {
	args := m.Called(ctx, identity, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) ListEvents(ctx context.Context, identity user.Identity, input application.ListEventsInput) ([]*event.Event, error) {
	args := m.Called(ctx, identity, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventService) BeginEditing(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) ApplyEdit(ctx context.Context, id string, f event.Fields, action event.EditAction) (*event.Event, error) {
	args := m.Called(ctx, id, f, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) DeleteEvent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEventService) RestoreEvent(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

// MockRegistrationService はRegistrationServiceInterfaceのモック
type MockRegistrationService struct {
	mock.Mock
}

func (m *MockRegistrationService) AdmitRegistration(ctx context.Context, input application.AdmitRegistrationInput) (*registration.Registration, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.Registration), args.Error(1)
}

func (m *MockRegistrationService) ListMyRegistrations(ctx context.Context, parentID string, limit, offset int) ([]*registration.Registration, error) {
	args := m.Called(ctx, parentID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registration.Registration), args.Error(1)
}

func (m *MockRegistrationService) ListEventRegistrations(ctx context.Context, identity user.Identity, eventID string) ([]*registration.Registration, error) {
	args := m.Called(ctx, identity, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registration.Registration), args.Error(1)
}

// MockChildService はChildServiceInterfaceのモック
type MockChildService struct {
	mock.Mock
}

func (m *MockChildService) CreateChild(ctx context.Context, parentID, name string, birthDate *time.Time) (*user.Child, error) {
	args := m.Called(ctx, parentID, name, birthDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.Child), args.Error(1)
}

func (m *MockChildService) ListChildren(ctx context.Context, parentID string) ([]*user.Child, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.Child), args.Error(1)
}

var (
	testAdmin  = user.Identity{UserID: "admin-1", Role: user.RoleAdmin}
	testStaff  = user.Identity{UserID: "staff-1", Role: user.RoleStaff}
	testParent = user.Identity{UserID: "parent-1", Role: user.RoleUser}
)

type testServer struct {
	echo         *echo.Echo
	events       *MockEventService
	registration *MockRegistrationService
	children     *MockChildService
}

// newTestServer は指定した呼び出し元として全ルートを登録したサーバーを作成する
func newTestServer(identity user.Identity) *testServer {
	s := &testServer{
		echo:         NewTestEcho(),
		events:       new(MockEventService),
		registration: new(MockRegistrationService),
		children:     new(MockChildService),
	}
	RegisterRoutes(s.echo, Handlers{
		Health:       NewHealthHandler(nil),
		Event:        NewEventHandler(s.events),
		Registration: NewRegistrationHandler(s.registration),
		Child:        NewChildHandler(s.children),
	}, AsIdentity(identity))
	return s
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}
