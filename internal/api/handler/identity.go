package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/krisztak/kidevent/internal/api/middleware"
	"github.com/krisztak/kidevent/internal/domain/user"
)

func identityOf(c echo.Context) (user.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return user.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "認証が必要です")
	}
	return identity, nil
}

// pageParams は limit / offset クエリを読む（未指定・不正値は0）
func pageParams(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}
