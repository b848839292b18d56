package handler

import (
	"context"
	"time"

	"github.com/krisztak/kidevent/internal/application"
	"github.com/krisztak/kidevent/internal/domain/event"
	"github.com/krisztak/kidevent/internal/domain/registration"
	"github.com/krisztak/kidevent/internal/domain/user"
)

// EventServiceInterface はイベントサービスのインターフェース
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, f event.Fields) (*event.Event, error)
	GetEvent(ctx context.Context, identity user.Identity, id string) (*event.Event, error)
	ListEvents(ctx context.Context, identity user.Identity, input application.ListEventsInput) ([]*event.Event, error)
	BeginEditing(ctx context.Context, id string) (*event.Event, error)
	ApplyEdit(ctx context.Context, id string, f event.Fields, action event.EditAction) (*event.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	RestoreEvent(ctx context.Context, id string) (*event.Event, error)
}

// RegistrationServiceInterface は申込サービスのインターフェース
type RegistrationServiceInterface interface {
	AdmitRegistration(ctx context.Context, input application.AdmitRegistrationInput) (*registration.Registration, error)
	ListMyRegistrations(ctx context.Context, parentID string, limit, offset int) ([]*registration.Registration, error)
	ListEventRegistrations(ctx context.Context, identity user.Identity, eventID string) ([]*registration.Registration, error)
}

// ChildServiceInterface は子ども管理サービスのインターフェース
type ChildServiceInterface interface {
	CreateChild(ctx context.Context, parentID, name string, birthDate *time.Time) (*user.Child, error)
	ListChildren(ctx context.Context, parentID string) ([]*user.Child, error)
}
