package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/krisztak/kidevent/internal/api/middleware"
	"github.com/krisztak/kidevent/internal/domain/user"
)

// Handlers はルーティングに登録するハンドラー一式
type Handlers struct {
	Health       *HealthHandler
	Event        *EventHandler
	Registration *RegistrationHandler
	Child        *ChildHandler
}

// RegisterRoutes は /health と /api/v1 配下のルートを登録する
// auth には認証ミドルウェア（本番は middleware.JWTAuth）を渡す
func RegisterRoutes(e *echo.Echo, h Handlers, auth echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Check)
	e.GET("/health/ready", h.Health.Ready)

	v1 := e.Group("/api/v1", auth)

	adminOnly := middleware.RequireRole(user.RoleAdmin)
	supervisors := middleware.RequireRole(user.RoleAdmin, user.RoleStaff)

	events := v1.Group("/events")
	events.GET("", h.Event.List)
	events.GET("/:id", h.Event.GetByID)
	events.POST("", h.Event.Create, adminOnly)
	events.PUT("/:id", h.Event.Update, adminOnly)
	events.POST("/:id/edit", h.Event.BeginEditing, adminOnly)
	events.DELETE("/:id", h.Event.Delete, adminOnly)
	events.POST("/:id/restore", h.Event.Restore, adminOnly)
	events.POST("/:id/registrations", h.Registration.Create)
	events.GET("/:id/registrations", h.Registration.ListByEvent, supervisors)

	v1.GET("/registrations", h.Registration.ListMine)

	v1.POST("/children", h.Child.Create)
	v1.GET("/children", h.Child.List)
}
