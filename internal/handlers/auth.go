package handlers

import (
	"net/http"

	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	users *services.UserService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
}

// Register handles user registration with email and password
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.Register(c.Request().Context(), req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login exchanges email and password for a bearer token
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, token)
}
