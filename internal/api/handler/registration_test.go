package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/krisztak/kidevent/internal/application"
	"github.com/krisztak/kidevent/internal/domain/event"
	"github.com/krisztak/kidevent/internal/domain/registration"
	"github.com/krisztak/kidevent/internal/domain/user"
)

func sampleRegistration(childID string) *registration.Registration {
	r := &registration.Registration{
		ID:             "reg-1",
		EventID:        "event-123",
		ParentID:       "parent-1",
		ServiceIndices: []int{0},
		CreditsCost:    2,
		ServicesCost:   1050,
		RegisteredAt:   time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	if childID != "" {
		r.ChildID = &childID
	}
	return r
}

func TestRegistrationHandler_Create(t *testing.T) {
	t.Run("子どもの申込", func(t *testing.T) {
		s := newTestServer(testParent)
		want := application.AdmitRegistrationInput{
			EventID:        "event-123",
			Registrant:     registration.Registrant{ParentID: "parent-1", Role: user.RoleUser, ChildID: "child-1"},
			ServiceIndices: []int{0},
		}
		s.registration.On("AdmitRegistration", mock.Anything, want).Return(sampleRegistration("child-1"), nil)

		rec := s.do(http.MethodPost, "/api/v1/events/event-123/registrations", `{"child_id":"child-1","service_indices":[0]}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp RegistrationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "child", resp.Kind)
		assert.Equal(t, "10.50", resp.ServicesCost)
		assert.Equal(t, 2, resp.CreditsCost)
		require.NotNil(t, resp.ChildID)
		assert.Equal(t, "child-1", *resp.ChildID)
		s.registration.AssertExpectations(t)
	})

	t.Run("本人の申込", func(t *testing.T) {
		s := newTestServer(testStaff)
		s.registration.On("AdmitRegistration", mock.Anything, mock.MatchedBy(func(in application.AdmitRegistrationInput) bool {
			return in.Registrant.Kind() == registration.KindSelf && in.Registrant.Role == user.RoleStaff
		})).Return(sampleRegistration(""), nil)

		rec := s.do(http.MethodPost, "/api/v1/events/event-123/registrations", `{}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"kind":"self"`)
		assert.NotContains(t, rec.Body.String(), `"child_id"`)
	})

	t.Run("負のインデックスは400", func(t *testing.T) {
		s := newTestServer(testParent)

		rec := s.do(http.MethodPost, "/api/v1/events/event-123/registrations", `{"service_indices":[-1]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	rejections := []struct {
		name       string
		err        error
		wantCode   int
		wantReason registration.Reason
	}{
		{name: "イベントなし", err: event.ErrEventNotFound, wantCode: http.StatusNotFound, wantReason: registration.ReasonNotFound},
		{name: "子どもなし", err: user.ErrChildNotFound, wantCode: http.StatusNotFound, wantReason: registration.ReasonNotFound},
		{name: "満席", err: event.ErrEventFull, wantCode: http.StatusConflict, wantReason: registration.ReasonEventFull},
		{name: "締切後", err: event.ErrRegistrationClosed, wantCode: http.StatusConflict, wantReason: registration.ReasonRegistrationClosed},
		{name: "区分不可", err: registration.ErrRegistrantTypeNotAllowed, wantCode: http.StatusUnprocessableEntity, wantReason: registration.ReasonRegistrantTypeNotAllowed},
		{name: "申込済み", err: registration.ErrAlreadyRegistered, wantCode: http.StatusConflict, wantReason: registration.ReasonAlreadyRegistered},
		{name: "処理中", err: registration.ErrRegistrationInProgress, wantCode: http.StatusConflict, wantReason: registration.ReasonAlreadyRegistered},
		{name: "ストレージ障害", err: registration.ErrStorageFailure, wantCode: http.StatusInternalServerError, wantReason: registration.ReasonStorageFailure},
	}
	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(testParent)
			s.registration.On("AdmitRegistration", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := s.do(http.MethodPost, "/api/v1/events/event-123/registrations", `{"child_id":"child-1"}`)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, string(tt.wantReason), decodeError(t, rec.Body.Bytes()).Reason)
		})
	}
}

func TestRegistrationHandler_ListMine(t *testing.T) {
	s := newTestServer(testParent)
	s.registration.On("ListMyRegistrations", mock.Anything, "parent-1", 5, 10).
		Return([]*registration.Registration{sampleRegistration("child-1"), sampleRegistration("")}, nil)

	rec := s.do(http.MethodGet, "/api/v1/registrations?limit=5&offset=10", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []RegistrationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestRegistrationHandler_ListByEvent(t *testing.T) {
	t.Run("スタッフは閲覧できる", func(t *testing.T) {
		s := newTestServer(testStaff)
		s.registration.On("ListEventRegistrations", mock.Anything, testStaff, "event-123").
			Return([]*registration.Registration{sampleRegistration("child-1")}, nil)

		rec := s.do(http.MethodGet, "/api/v1/events/event-123/registrations", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("一般ユーザーは403", func(t *testing.T) {
		s := newTestServer(testParent)

		rec := s.do(http.MethodGet, "/api/v1/events/event-123/registrations", "")

		assert.Equal(t, http.StatusForbidden, rec.Code)
		s.registration.AssertNotCalled(t, "ListEventRegistrations", mock.Anything, mock.Anything, mock.Anything)
	})
}
