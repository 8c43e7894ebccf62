package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/quill/backend/internal/apperr"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/labstack/echo/v4"
)

const identityKey = "identity"

// IdentityResolver resolves a bearer token to a caller identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (models.Identity, error)
}

// JWTAuthMiddleware requires a valid bearer token and stores the resolved
// identity in the echo context. It rejects the request before any handler
// touches a resource.
func JWTAuthMiddleware(resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorized("Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				return unauthorized("Invalid Authorization header format")
			}

			identity, err := resolver.Resolve(c.Request().Context(), parts[1])
			if err != nil {
				if errors.Is(err, apperr.ErrUnauthorized) {
					return unauthorized("Could not validate credentials")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
			}

			SetIdentity(c, identity)
			return next(c)
		}
	}
}

func unauthorized(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}

// GetIdentity returns the identity stored by JWTAuthMiddleware.
func GetIdentity(c echo.Context) (models.Identity, bool) {
	identity, ok := c.Get(identityKey).(models.Identity)
	return identity, ok
}

// SetIdentity stores identity in the echo context.
func SetIdentity(c echo.Context, identity models.Identity) {
	c.Set(identityKey, identity)
}
