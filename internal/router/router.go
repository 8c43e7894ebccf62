package router

import (
	"net/http"

	"github.com/anonto42/quill/backend/internal/auth"
	"github.com/anonto42/quill/backend/internal/handlers"
	"github.com/anonto42/quill/backend/internal/logger"
	"github.com/anonto42/quill/backend/internal/middleware"
	"github.com/anonto42/quill/backend/internal/services"
	"github.com/anonto42/quill/backend/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, store *config.Storage, cfg *config.Config) {
	// --- Services ---
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	commentService := services.NewCommentService(store.Comments, store.Posts, store.Users)
	postService := services.NewPostService(store.Posts, store.Users, commentService)
	userService := services.NewUserService(store.Users, tokens, postService, commentService)

	requireAuth := middleware.JWTAuthMiddleware(auth.NewIdentityResolver(tokens, store.Users))

	// Health check - always accessible
	e.GET("/health", handlers.NewHealthHandler(store).HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Quill blog API"})
	})
	if cfg.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	// --- Unprotected routes for authentication ---
	authHandler := handlers.NewAuthHandler(userService)
	authHandler.RegisterAuthRoutes(e.Group("/api/v1/auth"))

	// --- Resource routes: public reads, authenticated writes ---
	api := e.Group("/api/v1")

	userHandler := handlers.NewUserHandler(userService, postService, commentService)
	userHandler.RegisterUserRoutes(api, requireAuth)

	postHandler := handlers.NewPostHandler(postService, commentService)
	postHandler.RegisterPostRoutes(api, requireAuth)

	commentHandler := handlers.NewCommentHandler(commentService)
	commentHandler.RegisterCommentRoutes(api, requireAuth)

	logger.Info("Routes configured", "routes", len(e.Routes()))
}
