// Package apperr defines the error taxonomy shared by services and handlers.
// Specific errors wrap one of the five kinds so callers can match with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal failure")
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	ErrPostNotFound    = fmt.Errorf("post %w", ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("comment %w", ErrNotFound)
	ErrParentNotFound  = fmt.Errorf("parent comment %w or belongs to a different post", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)

	ErrInvalidSlug   = fmt.Errorf("%w: invalid slug format", ErrInvalidInput)
	ErrDuplicateSlug = fmt.Errorf("%w: post with this slug already exists", ErrInvalidInput)
	ErrEmptyContent  = fmt.Errorf("%w: content must not be empty", ErrInvalidInput)
	ErrInvalidStatus = fmt.Errorf("%w: unknown post status", ErrInvalidInput)
	ErrInvalidRole   = fmt.Errorf("%w: unknown role", ErrInvalidInput)
	ErrEmailTaken    = fmt.Errorf("%w: email already registered", ErrInvalidInput)
	ErrUsernameTaken = fmt.Errorf("%w: username already taken", ErrInvalidInput)
	ErrDeleteSelf    = fmt.Errorf("%w: cannot delete yourself", ErrInvalidInput)

	ErrInvalidCredentials = fmt.Errorf("%w: incorrect email or password", ErrUnauthorized)
)

// Forbiddenf builds a Forbidden error carrying a caller-facing message.
func Forbiddenf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// Internalf wraps an unexpected storage failure.
func Internalf(format string, args ...any) error {
	return fmt.Errorf("%w: %w", ErrInternal, fmt.Errorf(format, args...))
}
