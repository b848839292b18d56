package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/krisztak/kidevent/internal/api"
	"github.com/krisztak/kidevent/internal/api/middleware"
	"github.com/krisztak/kidevent/internal/domain/user"
)

// NewTestEcho はテスト用のEchoインスタンスを作成する
func NewTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	return e
}

// AsIdentity はトークン検証を省いて呼び出し元を固定するテスト用ミドルウェア
func AsIdentity(identity user.Identity) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			middleware.SetIdentity(c, identity)
			return next(c)
		}
	}
}
