package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/krisztak/kidevent/internal/api"
	"github.com/krisztak/kidevent/internal/application"
	"github.com/krisztak/kidevent/internal/domain/registration"
)

type RegistrationHandler struct {
	service RegistrationServiceInterface
}

func NewRegistrationHandler(s RegistrationServiceInterface) *RegistrationHandler {
	return &RegistrationHandler{service: s}
}

// CreateRegistrationRequest は申込リクエスト
// child_id を省略すると保護者本人の申込になる
type CreateRegistrationRequest struct {
	ChildID        string `json:"child_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ServiceIndices []int  `json:"service_indices" validate:"dive,gte=0" example:"0,1"`
}

type RegistrationResponse struct {
	ID             string  `json:"id"`
	EventID        string  `json:"event_id"`
	ParentID       string  `json:"parent_id"`
	ChildID        *string `json:"child_id,omitempty"`
	Kind           string  `json:"kind" example:"child"`
	ServiceIndices []int   `json:"service_indices"`
	CreditsCost    int     `json:"credits_cost" example:"2"`
	ServicesCost   string  `json:"services_cost" example:"15.00"`
	RegisteredAt   string  `json:"registered_at"`
}

func toRegistrationResponse(r *registration.Registration) RegistrationResponse {
	kind := registration.KindSelf
	if r.IsChildRegistration() {
		kind = registration.KindChild
	}
	indices := r.ServiceIndices
	if indices == nil {
		indices = []int{}
	}
	return RegistrationResponse{
		ID:             r.ID,
		EventID:        r.EventID,
		ParentID:       r.ParentID,
		ChildID:        r.ChildID,
		Kind:           string(kind),
		ServiceIndices: indices,
		CreditsCost:    r.CreditsCost,
		ServicesCost:   api.FormatPrice(r.ServicesCost),
		RegisteredAt:   r.RegisteredAt.Format(time.RFC3339),
	}
}

func toRegistrationResponses(regs []*registration.Registration) []RegistrationResponse {
	resp := make([]RegistrationResponse, len(regs))
	for i, r := range regs {
		resp[i] = toRegistrationResponse(r)
	}
	return resp
}

// Create godoc
// @Summary イベントに申込
// @Description 子ども、または保護者本人の参加を申し込みます
// @Tags registrations
// @Accept json
// @Produce json
// @Param id path string true "イベントID"
// @Param request body CreateRegistrationRequest true "申込内容"
// @Success 201 {object} RegistrationResponse
// @Failure 404 {object} api.ErrorResponse "イベントまたは子どもが存在しない"
// @Failure 409 {object} api.ErrorResponse "満席・締切後・申込済み"
// @Failure 422 {object} api.ErrorResponse "参加者区分が許可されていない"
// @Router /events/{id}/registrations [post]
func (h *RegistrationHandler) Create(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}
	var req CreateRegistrationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	r, err := h.service.AdmitRegistration(c.Request().Context(), application.AdmitRegistrationInput{
		EventID: c.Param("id"),
		Registrant: registration.Registrant{
			ParentID: identity.UserID,
			Role:     identity.Role,
			ChildID:  req.ChildID,
		},
		ServiceIndices: req.ServiceIndices,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toRegistrationResponse(r))
}

// ListMine godoc
// @Summary 自分の申込一覧
// @Tags registrations
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} RegistrationResponse
// @Router /registrations [get]
func (h *RegistrationHandler) ListMine(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}
	limit, offset := pageParams(c)
	regs, err := h.service.ListMyRegistrations(c.Request().Context(), identity.UserID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRegistrationResponses(regs))
}

// ListByEvent godoc
// @Summary イベントの申込一覧（管理者・スタッフ）
// @Tags registrations
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {array} RegistrationResponse
// @Failure 403 {object} api.ErrorResponse
// @Router /events/{id}/registrations [get]
func (h *RegistrationHandler) ListByEvent(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}
	regs, err := h.service.ListEventRegistrations(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRegistrationResponses(regs))
}
