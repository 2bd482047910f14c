// Package apperrors defines the error kinds request handlers translate into
// HTTP status codes.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated means the credentials were wrong or missing.
	ErrUnauthenticated = errors.New("authentication failed")
	// ErrForbidden means the caller is known but lacks the role or ownership.
	ErrForbidden = errors.New("permission denied")
	// ErrValidation means malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict means the write would violate a uniqueness rule.
	ErrConflict = errors.New("conflict")
	// ErrNotFound means the addressed resource does not exist.
	ErrNotFound = errors.New("resource not found")
)

// AppError attaches a user-facing message to one of the sentinel kinds.
type AppError struct {
	Kind    error
	Message string
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

func New(kind error, message string) error {
	return &AppError{Kind: kind, Message: message}
}

func Unauthenticated(message string) error { return New(ErrUnauthenticated, message) }
func Forbidden(message string) error       { return New(ErrForbidden, message) }
func Validation(message string) error      { return New(ErrValidation, message) }
func Conflict(message string) error        { return New(ErrConflict, message) }
func NotFound(message string) error        { return New(ErrNotFound, message) }

// StatusCode maps err onto an HTTP status. Unknown errors are 500.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns text that is safe to show to the client. Errors outside the
// taxonomy never leak their details.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	if StatusCode(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
