// Package apperr defines the failure taxonomy that handlers funnel into one error view.
package apperr

import (
	"errors"
	"net/http"
)

// DefaultMessage is shown when a failure carries no message of its own.
const DefaultMessage = "Oh No, Something Went Wrong"

// Kind classifies a failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindAuthRequired
	KindForbidden
	KindConflict
	KindRateLimited
)

// Error is a failure with an HTTP status and a user-visible message.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return DefaultMessage
}

func (e *Error) Unwrap() error { return e.Err }

// Validation marks a payload that failed shape rules.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: msg}
}

// NotFound marks a missing resource or route.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: msg}
}

// AuthRequired marks a request that needs a signed-in identity.
func AuthRequired(msg string) *Error {
	return &Error{Kind: KindAuthRequired, Status: http.StatusUnauthorized, Message: msg}
}

// Forbidden marks an identity acting on something it does not own.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Status: http.StatusForbidden, Message: msg}
}

// Conflict marks a uniqueness violation.
func Conflict(msg string, err error) *Error {
	return &Error{Kind: KindConflict, Status: http.StatusConflict, Message: msg, Err: err}
}

// RateLimited marks a client that exceeded a request budget.
func RateLimited(msg string) *Error {
	return &Error{Kind: KindRateLimited, Status: http.StatusTooManyRequests, Message: msg}
}

// Internal wraps an unexpected failure; its cause is never shown to users.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Err: err}
}

// As extracts an *Error from the chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}

// StatusOf returns the status for err, 500 when unspecified.
func StatusOf(err error) int {
	if e, ok := As(err); ok && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the user-visible message for err.
// Internal failures always render the default message.
func MessageOf(err error) string {
	e, ok := As(err)
	if !ok || e.Kind == KindInternal || e.Message == "" {
		return DefaultMessage
	}
	return e.Message
}
