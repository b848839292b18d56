package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/krisztak/kidevent/internal/api"
	"github.com/krisztak/kidevent/internal/application"
	"github.com/krisztak/kidevent/internal/domain/event"
)

type EventHandler struct {
	eventService EventServiceInterface
}

func NewEventHandler(eventService EventServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService}
}

type ExtraServiceRequest struct {
	Description string `json:"description" validate:"required" example:"送迎"`
	Price       string `json:"price" validate:"required,price" example:"10.00"`
	Currency    string `json:"currency" validate:"required,len=3" example:"JPY"`
}

type EventRequest struct {
	Name               string                `json:"name" validate:"required" example:"夏休み工作教室"`
	Location           string                `json:"location" example:"第一公民館"`
	StartAt            string                `json:"start_at" validate:"required,rfc3339" example:"2026-08-01T10:00:00+09:00"`
	DurationMinutes    int                   `json:"duration_minutes" validate:"gte=0" example:"90"`
	MaxSeats           int                   `json:"max_seats" validate:"required,gt=0" example:"20"`
	CreditsRequired    int                   `json:"credits_required" validate:"gte=0" example:"2"`
	CutoffHours        int                   `json:"cutoff_hours" validate:"gte=0" example:"24"`
	ExtraServices      []ExtraServiceRequest `json:"extra_services" validate:"dive"`
	AllowedRegistrants string                `json:"allowed_registrants" validate:"required,oneof=attendee user both" example:"both"`
}

type UpdateEventRequest struct {
	EventRequest
	Action string `json:"action" validate:"required,oneof=publish save" example:"publish"`
}

type ExtraServiceResponse struct {
	Description string `json:"description"`
	Price       string `json:"price" example:"10.00"`
	Currency    string `json:"currency"`
}

type EventResponse struct {
	ID                 string                 `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name               string                 `json:"name"`
	Location           string                 `json:"location"`
	StartAt            string                 `json:"start_at"`
	EndAt              string                 `json:"end_at"`
	DurationMinutes    int                    `json:"duration_minutes"`
	MaxSeats           int                    `json:"max_seats"`
	RemainingSeats     int                    `json:"remaining_seats"`
	CreditsRequired    int                    `json:"credits_required"`
	CutoffHours        int                    `json:"cutoff_hours"`
	CutoffAt           string                 `json:"cutoff_at"`
	ExtraServices      []ExtraServiceResponse `json:"extra_services"`
	AllowedRegistrants string                 `json:"allowed_registrants"`
	Status             string                 `json:"status" example:"open"`
	Deleted            bool                   `json:"deleted,omitempty"`
	CreatedAt          string                 `json:"created_at"`
	UpdatedAt          string                 `json:"updated_at"`
}

func toEventResponse(e *event.Event) *EventResponse {
	services := make([]ExtraServiceResponse, len(e.ExtraServices))
	for i, s := range e.ExtraServices {
		services[i] = ExtraServiceResponse{
			Description: s.Description,
			Price:       api.FormatPrice(s.PriceCents),
			Currency:    s.Currency,
		}
	}
	return &EventResponse{
		ID:                 e.ID,
		Name:               e.Name,
		Location:           e.Location,
		StartAt:            e.StartAt.Format(time.RFC3339),
		EndAt:              e.EndAt().Format(time.RFC3339),
		DurationMinutes:    int(e.Duration / time.Minute),
		MaxSeats:           e.MaxSeats,
		RemainingSeats:     e.RemainingSeats,
		CreditsRequired:    e.CreditsRequired,
		CutoffHours:        e.CutoffHours,
		CutoffAt:           e.CutoffAt().Format(time.RFC3339),
		ExtraServices:      services,
		AllowedRegistrants: string(e.AllowedRegistrants),
		Status:             string(e.Status),
		Deleted:            e.Deleted,
		CreatedAt:          e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          e.UpdatedAt.Format(time.RFC3339),
	}
}

// toFields はリクエストをドメインの編集項目に変換する（検証済みの前提）
func (r EventRequest) toFields() (event.Fields, error) {
	startAt, err := api.ParseTime(r.StartAt)
	if err != nil {
		return event.Fields{}, echo.NewHTTPError(http.StatusBadRequest, "開始時刻の形式が不正です")
	}
	services := make([]event.ExtraService, len(r.ExtraServices))
	for i, s := range r.ExtraServices {
		cents, err := api.ParsePrice(s.Price)
		if err != nil {
			return event.Fields{}, echo.NewHTTPError(http.StatusBadRequest, "金額の形式が不正です")
		}
		services[i] = event.ExtraService{Description: s.Description, PriceCents: cents, Currency: s.Currency}
	}
	return event.Fields{
		Name:               r.Name,
		Location:           r.Location,
		StartAt:            startAt,
		Duration:           time.Duration(r.DurationMinutes) * time.Minute,
		MaxSeats:           r.MaxSeats,
		CreditsRequired:    r.CreditsRequired,
		CutoffHours:        r.CutoffHours,
		ExtraServices:      services,
		AllowedRegistrants: event.AllowedRegistrants(r.AllowedRegistrants),
	}, nil
}

func (h *EventHandler) bindFields(c echo.Context, req interface{}, base *EventRequest) (event.Fields, error) {
	if err := c.Bind(req); err != nil {
		return event.Fields{}, echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(req); err != nil {
		return event.Fields{}, err
	}
	return base.toFields()
}

// Create godoc
// @Summary イベントを作成
// @Description 新しいイベントを作成します（管理者のみ）
// @Tags events
// @Accept json
// @Produce json
// @Param request body EventRequest true "イベント情報"
// @Success 201 {object} EventResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req EventRequest
	f, err := h.bindFields(c, &req, &req)
	if err != nil {
		return err
	}
	e, err := h.eventService.CreateEvent(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toEventResponse(e))
}

// GetByID godoc
// @Summary イベントを取得
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}
	e, err := h.eventService.GetEvent(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// List godoc
// @Summary イベント一覧を取得
// @Description status は導出後のステータスで絞り込む。include_deleted は管理者のみ有効
// @Tags events
// @Produce json
// @Param status query string false "ステータス"
// @Param include_deleted query bool false "削除済みを含める"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} EventResponse
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}

	input := application.ListEventsInput{}
	input.Limit, input.Offset = pageParams(c)
	if raw := c.QueryParam("status"); raw != "" {
		status, err := event.ParseStatus(raw)
		if err != nil {
			return err
		}
		input.Status = status
	}
	input.IncludeDeleted, _ = strconv.ParseBool(c.QueryParam("include_deleted"))

	events, err := h.eventService.ListEvents(c.Request().Context(), identity, input)
	if err != nil {
		return err
	}

	responses := make([]*EventResponse, len(events))
	for i, e := range events {
		responses[i] = toEventResponse(e)
	}
	return c.JSON(http.StatusOK, responses)
}

// Update godoc
// @Summary イベントを編集
// @Description action=publish で公開、action=save で下書き保存します（管理者のみ）
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "イベントID"
// @Param request body UpdateEventRequest true "イベント情報"
// @Success 200 {object} EventResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "定員が申込済みの席数を下回る"
// @Router /events/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	var req UpdateEventRequest
	f, err := h.bindFields(c, &req, &req.EventRequest)
	if err != nil {
		return err
	}
	action, err := event.ParseEditAction(req.Action)
	if err != nil {
		return err
	}
	e, err := h.eventService.ApplyEdit(c.Request().Context(), c.Param("id"), f, action)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// BeginEditing は編集を開始する（一般ユーザーには非表示になる）
func (h *EventHandler) BeginEditing(c echo.Context) error {
	e, err := h.eventService.BeginEditing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Delete godoc
// @Summary イベントを削除
// @Description 論理削除します。申込は保持されます（管理者のみ）
// @Tags events
// @Param id path string true "イベントID"
// @Success 204
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	if err := h.eventService.DeleteEvent(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *EventHandler) Restore(c echo.Context) error {
	e, err := h.eventService.RestoreEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}
