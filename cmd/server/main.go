package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/quill/backend/internal/logger"
	"github.com/anonto42/quill/backend/internal/router"
	"github.com/anonto42/quill/backend/pkg/config"
	"github.com/anonto42/quill/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", "error", err)
	}
	logger.Init(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	store, err := config.InitStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	defer store.Close(context.Background())

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	config.SetupMiddleware(e, cfg)

	// Setup routes and dependencies
	router.SetupRoutes(e, store, cfg)

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "env", cfg.Env, "storage", cfg.StorageDriver)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped unexpectedly", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
