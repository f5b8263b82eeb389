// Package domain provides the canonical data model and error types shared by
// the resolution and aggregation pipeline.
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind represents the category of a pipeline error.
type ErrorKind string

const (
	// ErrorKindValidation indicates a missing or malformed input URL.
	ErrorKindValidation ErrorKind = "invalid_request"

	// ErrorKindNotFound indicates the session reference resolved to no votes.
	ErrorKindNotFound ErrorKind = "not_found"

	// ErrorKindUpstream indicates the open-data API answered with an
	// unexpected status or an unreadable body.
	ErrorKindUpstream ErrorKind = "upstream"

	// ErrorKindServer indicates an unexpected local failure.
	ErrorKindServer ErrorKind = "server"
)

// MaxBodyExcerpt bounds the upstream body excerpt carried for diagnostics.
const MaxBodyExcerpt = 180

// Error is the canonical pipeline error. Frontdoors translate it into the
// boundary error shape without needing to know which stage produced it.
type Error struct {
	// Kind is the category of error
	Kind ErrorKind `json:"type"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// StatusCode is the upstream HTTP status, when the error came from upstream
	StatusCode int `json:"-"`

	// URL is the upstream address that was requested (if applicable)
	URL string `json:"-"`

	// BodyExcerpt holds the first MaxBodyExcerpt characters of the upstream body
	BodyExcerpt string `json:"-"`

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail())
}

// Detail is the message shown to callers: Message plus upstream context or
// the wrapped cause, without the kind prefix.
func (e *Error) Detail() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d @ %s :: %s)", e.Message, e.StatusCode, e.URL, e.BodyExcerpt)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// HTTPStatusCode returns the status a frontdoor should answer with.
func (e *Error) HTTPStatusCode() int {
	switch e.Kind {
	case ErrorKindValidation:
		return http.StatusBadRequest
	case ErrorKindNotFound:
		return http.StatusNotFound
	case ErrorKindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewError creates a new pipeline error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// WithUpstream records the upstream response that caused the error.
func (e *Error) WithUpstream(statusCode int, url, body string) *Error {
	e.StatusCode = statusCode
	e.URL = url
	e.BodyExcerpt = Excerpt(body)
	return e
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// Convenience constructors for common errors

// ErrValidation creates a validation error.
func ErrValidation(message string) *Error {
	return NewError(ErrorKindValidation, message)
}

// ErrNotFound creates a not found error.
func ErrNotFound(message string) *Error {
	return NewError(ErrorKindNotFound, message)
}

// ErrUpstream creates an upstream error.
func ErrUpstream(message string) *Error {
	return NewError(ErrorKindUpstream, message)
}

// ErrServer creates an internal server error.
func ErrServer(message string) *Error {
	return NewError(ErrorKindServer, message)
}

// AsError converts any error to a *Error. Errors that are not already
// canonical are wrapped as server errors.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrServer("unexpected error").WithCause(err)
}

// IsKind reports whether err is a canonical error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Excerpt truncates s to MaxBodyExcerpt characters.
func Excerpt(s string) string {
	r := []rune(s)
	if len(r) <= MaxBodyExcerpt {
		return s
	}
	return string(r[:MaxBodyExcerpt])
}
