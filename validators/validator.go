// Package validators wires go-playground/validator into echo.
package validators

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/anonto42/quill/backend/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator implements echo.Validator
type CustomValidator struct {
	validate *validator.Validate
}

// NewValidator returns a validator with the blog specific rules registered.
func NewValidator() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return services.IsValidSlug(fl.Field().String())
	})
	return &CustomValidator{validate: v}
}

// Validate returns a 400 describing every failed field.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return echo.NewHTTPError(http.StatusBadRequest, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "slug":
		return fmt.Sprintf("%s must contain only lowercase letters, digits and single hyphens", fe.Field())
	default:
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
}
