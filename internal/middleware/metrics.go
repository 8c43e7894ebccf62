package middleware

import (
	"strconv"
	"time"

	"github.com/anonto42/quill/backend/internal/metrics"
	"github.com/labstack/echo/v4"
)

// Metrics records Prometheus metrics for HTTP requests: totals by method,
// route and status, a duration histogram and the in-flight gauge.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/metrics" {
				return next(c)
			}

			start := time.Now()
			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			err := next(c)
			if err != nil {
				// let echo write the error so the recorded status is final
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			status := strconv.Itoa(c.Response().Status)

			metrics.HTTPRequestsTotal.WithLabelValues(c.Request().Method, path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
