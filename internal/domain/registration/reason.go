package registration

import (
	"errors"

	"github.com/krisztak/kidevent/internal/domain/event"
	"github.com/krisztak/kidevent/internal/domain/user"
)

// Reason は申込が拒否された理由
type Reason string

const (
	ReasonNone                     Reason = ""
	ReasonNotFound                 Reason = "not_found"
	ReasonEventFull                Reason = "event_full"
	ReasonRegistrationClosed       Reason = "registration_closed"
	ReasonRegistrantTypeNotAllowed Reason = "registrant_type_not_allowed"
	ReasonAlreadyRegistered        Reason = "already_registered"
	ReasonStorageFailure           Reason = "storage_failure"
)

// ReasonOf はエラーを拒否理由に変換する
// nil は ReasonNone、未分類のエラーは ReasonStorageFailure になる
func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, event.ErrEventNotFound),
		errors.Is(err, user.ErrChildNotFound),
		errors.Is(err, ErrRegistrationNotFound):
		return ReasonNotFound
	case errors.Is(err, event.ErrEventFull):
		return ReasonEventFull
	case errors.Is(err, event.ErrRegistrationClosed):
		return ReasonRegistrationClosed
	case errors.Is(err, ErrRegistrantTypeNotAllowed):
		return ReasonRegistrantTypeNotAllowed
	case errors.Is(err, ErrAlreadyRegistered),
		errors.Is(err, ErrRegistrationInProgress):
		return ReasonAlreadyRegistered
	default:
		return ReasonStorageFailure
	}
}
