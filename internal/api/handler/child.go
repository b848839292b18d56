package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/krisztak/kidevent/internal/domain/user"
)

const birthDateLayout = "2006-01-02"

type ChildHandler struct {
	service ChildServiceInterface
}

func NewChildHandler(s ChildServiceInterface) *ChildHandler {
	return &ChildHandler{service: s}
}

type CreateChildRequest struct {
	Name      string `json:"name" validate:"required,max=100" example:"たろう"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02" example:"2018-05-01"`
}

type ChildResponse struct {
	ID        string  `json:"id"`
	ParentID  string  `json:"parent_id"`
	Name      string  `json:"name"`
	BirthDate *string `json:"birth_date,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func toChildResponse(c *user.Child) ChildResponse {
	resp := ChildResponse{
		ID:        c.ID,
		ParentID:  c.ParentID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
	if c.BirthDate != nil {
		s := c.BirthDate.Format(birthDateLayout)
		resp.BirthDate = &s
	}
	return resp
}

// Create godoc
// @Summary 子どもを登録
// @Tags children
// @Accept json
// @Produce json
// @Param request body CreateChildRequest true "子どもの情報"
// @Success 201 {object} ChildResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /children [post]
func (h *ChildHandler) Create(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}
	var req CreateChildRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var birthDate *time.Time
	if req.BirthDate != "" {
		t, err := time.Parse(birthDateLayout, req.BirthDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "生年月日の形式が不正です")
		}
		birthDate = &t
	}

	child, err := h.service.CreateChild(c.Request().Context(), identity.UserID, req.Name, birthDate)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toChildResponse(child))
}

// List godoc
// @Summary 自分の子ども一覧
// @Tags children
// @Produce json
// @Success 200 {array} ChildResponse
// @Router /children [get]
func (h *ChildHandler) List(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}
	children, err := h.service.ListChildren(c.Request().Context(), identity.UserID)
	if err != nil {
		return err
	}
	resp := make([]ChildResponse, len(children))
	for i, child := range children {
		resp[i] = toChildResponse(child)
	}
	return c.JSON(http.StatusOK, resp)
}
