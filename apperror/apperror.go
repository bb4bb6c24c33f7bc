// Package apperror defines the error taxonomy shared by every operation and
// its mapping onto HTTP status codes and client-safe messages.
package apperror

import (
	"net/http"

	"github.com/pkg/errors"
)

// Kinds. Every error returned to a client matches exactly one of them with errors.Is;
// anything else is treated as ErrInternal.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrInternal        = errors.New("internal error")
)

// Error is a client-facing error of a given kind.
type Error struct {
	kind    error
	message string
}

// New returns an error of the given kind carrying a message that is safe to show to clients.
func New(kind error, message string) *Error {
	return &Error{kind: kind, message: message}
}

func (e *Error) Error() string {
	return e.message
}

// Is matches the error's kind.
func (e *Error) Is(target error) bool {
	return e.kind == target
}

// Kind returns the taxonomy member of the error.
func (e *Error) Kind() error {
	return e.kind
}

var (
	ErrMissingToken       = New(ErrUnauthenticated, "authorization header required")
	ErrInvalidToken       = New(ErrUnauthenticated, "invalid token")
	ErrTokenExpired       = New(ErrUnauthenticated, "token expired")
	ErrInvalidCredentials = New(ErrUnauthenticated, "invalid email or password")
	ErrInsufficientRole   = New(ErrForbidden, "insufficient role for this operation")
	ErrAccountGone        = New(ErrForbidden, "account no longer exists")
	ErrUserNotFound       = New(ErrNotFound, "user not found")
	ErrDuplicateEmail     = New(ErrValidation, "email already registered")
)

var kinds = []struct {
	kind   error
	status int
}{
	{ErrUnauthenticated, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
	{ErrValidation, http.StatusBadRequest},
	{ErrNotFound, http.StatusNotFound},
	{ErrInternal, http.StatusInternalServerError},
}

// KindOf returns the taxonomy member err belongs to, ErrInternal for unknown errors.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k.kind) {
			return k.kind
		}
	}
	return ErrInternal
}

// StatusCode maps err onto an HTTP status code.
func StatusCode(err error) int {
	kind := KindOf(err)
	for _, k := range kinds {
		if k.kind == kind {
			return k.status
		}
	}
	return http.StatusInternalServerError
}

// Message returns a message that is safe to return to clients.
// Internal failures never expose their cause.
func Message(err error) string {
	if KindOf(err) == ErrInternal {
		return ErrInternal.Error()
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.message
	}
	return KindOf(err).Error()
}
