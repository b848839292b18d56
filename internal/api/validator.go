package api

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator はEcho用のカスタムバリデーター
type CustomValidator struct {
	validator *validator.Validate
}

type customTag struct {
	name string
	fn   validator.Func
}

var customTags = []customTag{
	{name: "rfc3339", fn: validateRFC3339},
	{name: "price", fn: validatePrice},
}

// NewValidator は新しいバリデーターを作成する
// rfc3339 タグで日時文字列、price タグで金額文字列を検証できる
// タグの登録に失敗した場合は起動時に panic する
func NewValidator() *CustomValidator {
	cv, err := newValidator(customTags)
	if err != nil {
		panic(err)
	}
	return cv
}

func newValidator(tags []customTag) (*CustomValidator, error) {
	v := validator.New()
	for _, tag := range tags {
		if err := v.RegisterValidation(tag.name, tag.fn); err != nil {
			return nil, fmt.Errorf("バリデーションタグ %q の登録に失敗: %w", tag.name, err)
		}
	}
	return &CustomValidator{validator: v}, nil
}

// Validate はリクエストのバリデーションを実行する
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func validateRFC3339(fl validator.FieldLevel) bool {
	_, err := ParseTime(fl.Field().String())
	return err == nil
}

func validatePrice(fl validator.FieldLevel) bool {
	_, err := ParsePrice(fl.Field().String())
	return err == nil
}
