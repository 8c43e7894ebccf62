package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and storage readiness.
type HealthHandler struct {
	storage Pinger
}

func NewHealthHandler(storage Pinger) *HealthHandler {
	return &HealthHandler{storage: storage}
}

func (h *HealthHandler) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "unavailable",
			"service": "quill-api",
			"error":   err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "quill-api",
	})
}
