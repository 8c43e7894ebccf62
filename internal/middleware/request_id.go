package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// RequestIDHeader is the header name for request ID
const RequestIDHeader = echo.HeaderXRequestID

// RequestID adds a unique request ID to each request. A client supplied
// X-Request-ID is kept; otherwise a new UUID is generated.
func RequestID() echo.MiddlewareFunc {
	return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

// GetRequestID retrieves the request ID from the response header.
func GetRequestID(c echo.Context) string {
	return c.Response().Header().Get(RequestIDHeader)
}
