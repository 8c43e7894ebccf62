// Package logger provides the process-wide structured logger.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Init configures the default logger. Production gets JSON, anything else text.
func Init(env, level string) {
	defaultLogger = New(os.Stdout, env, level)
	slog.SetDefault(defaultLogger)
}

// New builds a logger writing to w.
func New(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if env == "production" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLogger allows setting a custom logger (useful for testing)
func SetLogger(logger *slog.Logger) {
	defaultLogger = logger
}

// Default returns the default logger
func Default() *slog.Logger {
	return defaultLogger
}

// Info logs an info message with optional attributes
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Error logs an error message with optional attributes
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// ErrorContext logs an error message with context
func ErrorContext(ctx context.Context, msg string, args ...any) {
	defaultLogger.ErrorContext(ctx, msg, args...)
}

// WarnContext logs a warning message with context
func WarnContext(ctx context.Context, msg string, args ...any) {
	defaultLogger.WarnContext(ctx, msg, args...)
}

// Fatal logs an error message and exits
func Fatal(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
	os.Exit(1)
}

// WithRequestID adds request_id to logger context
func WithRequestID(requestID string) *slog.Logger {
	return defaultLogger.With(slog.String("request_id", requestID))
}
