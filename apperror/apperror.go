package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Kind classifies an application error independently of transport.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindDuplicate
	KindDependency
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindDuplicate:
		return "duplicate"
	case KindDependency:
		return "dependency"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error represents an application error
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Status maps the error kind to an HTTP status code. State-guard conflicts on
// orders surface as 404 because clients treat "already taken" and "gone" alike.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound, KindConflict:
		return http.StatusNotFound
	case KindDuplicate:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new Error
func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error   { return New(KindValidation, message, nil) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message, nil) }
func Forbidden(message string) *Error    { return New(KindForbidden, message, nil) }
func NotFound(message string) *Error     { return New(KindNotFound, message, nil) }
func Conflict(message string) *Error     { return New(KindConflict, message, nil) }
func Duplicate(message string) *Error    { return New(KindDuplicate, message, nil) }
func Unavailable(message string) *Error  { return New(KindUnavailable, message, nil) }

// Dependency wraps a store or upstream failure.
func Dependency(message string, err error) *Error {
	return New(KindDependency, message, err)
}

// From classifies any error. Application errors pass through unchanged; record
// misses become NotFound and everything else is a dependency failure.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return New(KindNotFound, "record not found", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return New(KindDependency, "request cancelled", err)
	}
	return New(KindDependency, "internal server error", err)
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
