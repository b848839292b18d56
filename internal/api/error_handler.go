package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/krisztak/kidevent/internal/application"
	"github.com/krisztak/kidevent/internal/domain/event"
	"github.com/krisztak/kidevent/internal/domain/registration"
	"github.com/krisztak/kidevent/internal/domain/user"
	"github.com/krisztak/kidevent/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Details string `json:"details,omitempty"`
}

// 拒否理由以外のエラーコード
const (
	ReasonInvalidRequest   = "invalid_request"
	ReasonPermissionDenied = "permission_denied"
	ReasonUnauthorized     = "unauthorized"
)

// 入力値の検証エラー（400 として返す）
var validationErrors = []error{
	event.ErrEventNameRequired,
	event.ErrInvalidMaxSeats,
	event.ErrInvalidRemainingSeats,
	event.ErrInvalidCreditsRequired,
	event.ErrInvalidCutoffHours,
	event.ErrInvalidDuration,
	event.ErrInvalidStartAt,
	event.ErrInvalidAllowedRegistrants,
	event.ErrInvalidExtraService,
	event.ErrInvalidStatus,
	event.ErrInvalidEditAction,
	user.ErrChildNameRequired,
	user.ErrParentIDRequired,
	user.ErrInvalidRole,
	registration.ErrEventIDRequired,
	registration.ErrParentIDRequired,
	registration.ErrInvalidCost,
}

// Classify はエラーをHTTPステータスと理由コードに変換する
func Classify(err error) (int, string) {
	if errors.Is(err, application.ErrPermissionDenied) {
		return http.StatusForbidden, ReasonPermissionDenied
	}
	if errors.Is(err, event.ErrMaxSeatsBelowBooked) {
		return http.StatusConflict, ReasonInvalidRequest
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, ReasonInvalidRequest
		}
	}

	reason := registration.ReasonOf(err)
	switch reason {
	case registration.ReasonNotFound:
		return http.StatusNotFound, string(reason)
	case registration.ReasonEventFull,
		registration.ReasonRegistrationClosed,
		registration.ReasonAlreadyRegistered:
		return http.StatusConflict, string(reason)
	case registration.ReasonRegistrantTypeNotAllowed:
		return http.StatusUnprocessableEntity, string(reason)
	default:
		return http.StatusInternalServerError, string(registration.ReasonStorageFailure)
	}
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code    int
		reason  string
		message string
	)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
		switch {
		case code == http.StatusUnauthorized:
			reason = ReasonUnauthorized
		case code == http.StatusForbidden:
			reason = ReasonPermissionDenied
		case code == http.StatusNotFound:
			reason = string(registration.ReasonNotFound)
		case code < 500:
			reason = ReasonInvalidRequest
		}
	} else {
		code, reason = Classify(err)
		message = err.Error()
		if code >= 500 {
			// 内部エラーの詳細はレスポンスに含めない
			message = "内部サーバーエラー"
		}
	}

	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("reason", reason),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if err := c.JSON(code, ErrorResponse{
		Error:  message,
		Code:   code,
		Reason: reason,
	}); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
