// Package errs defines the error kinds surfaced by domain operations.
//
// Every expected failure is an *Error whose Kind is one of the sentinels
// below, so callers can branch with errors.Is without string matching.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel kinds.
var (
	// ErrValidation marks user-correctable input problems.
	ErrValidation = errors.New("validation error")
	// ErrState marks operations rejected by the current event state.
	ErrState = errors.New("state error")
	// ErrNotFound marks missing records and records outside the caller's scope.
	ErrNotFound = errors.New("not found")
)

// Error is a structured domain failure.
type Error struct {
	Kind    error
	Op      string
	Message string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return e.Op + ": " + e.Message
}

// Unwrap exposes the kind to errors.Is.
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Validation builds an ErrValidation failure.
func Validation(op, format string, args ...any) error {
	return newError(ErrValidation, op, format, args...)
}

// State builds an ErrState failure.
func State(op, format string, args ...any) error {
	return newError(ErrState, op, format, args...)
}

// NotFound builds an ErrNotFound failure.
func NotFound(op, format string, args ...any) error {
	return newError(ErrNotFound, op, format, args...)
}

// Kind names the kind of err for logs and metrics labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrState):
		return "state"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}

// Message returns the user-facing message of a domain error, or the plain
// error text otherwise.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
