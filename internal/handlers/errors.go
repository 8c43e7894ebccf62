package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/quill/backend/internal/apperr"
	"github.com/anonto42/quill/backend/internal/logger"
	"github.com/anonto42/quill/backend/internal/middleware"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/query"
	"github.com/labstack/echo/v4"
)

// httpError maps a service error onto the HTTP status of its kind.
func httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, message(err))
	case errors.Is(err, apperr.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, message(err))
	case errors.Is(err, apperr.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, message(err))
	case errors.Is(err, apperr.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, message(err))
	default:
		logger.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"request_id", middleware.GetRequestID(c),
			"error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
	}
}

// message strips the kind prefix and capitalizes the rest.
func message(err error) string {
	msg := err.Error()
	for _, kind := range []error{apperr.ErrInvalidInput, apperr.ErrForbidden, apperr.ErrUnauthorized} {
		msg = strings.TrimPrefix(msg, kind.Error()+": ")
	}
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// bindAndValidate binds the request body and runs the echo validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

// identity returns the caller resolved by the auth middleware.
func identity(c echo.Context) (models.Identity, error) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		return models.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return id, nil
}

func page(c echo.Context, def int64) query.Page {
	return query.ParsePage(c.QueryParam("limit"), c.QueryParam("offset"), def)
}

func list[T any](items []T, total int64, p query.Page) models.List[T] {
	if items == nil {
		items = []T{}
	}
	return models.List[T]{Total: total, Limit: p.Limit, Offset: p.Offset, Items: items}
}
