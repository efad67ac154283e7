package errors

import (
	"errors"
	"net/http"
)

// HTTPError represents an error with an associated HTTP status code.
// Message is the client-facing text, Cause the underlying failure reported
// in the envelope's "error" field.
type HTTPError struct {
	Code    int
	Message string
	Fields  map[string][]string
	Cause   error
}

func (e *HTTPError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Cause
}

// Detail is the description written to the envelope's "error" field.
func (e *HTTPError) Detail() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// WithCause returns a copy of e wrapping cause.
func (e *HTTPError) WithCause(cause error) *HTTPError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// Helpers for common errors
var (
	ErrUnauthorized = func(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, msg) }
	ErrForbidden    = func(msg string) *HTTPError { return NewHTTPError(http.StatusForbidden, msg) }
	ErrNotFound     = func(msg string) *HTTPError { return NewHTTPError(http.StatusNotFound, msg) }
	ErrConflict     = func(msg string) *HTTPError { return NewHTTPError(http.StatusConflict, msg) }
	ErrBadRequest   = func(msg string) *HTTPError { return NewHTTPError(http.StatusBadRequest, msg) }
)

// Validation builds a 422 error carrying field-level messages.
func Validation(msg string, fields map[string][]string) *HTTPError {
	return &HTTPError{
		Code:    http.StatusUnprocessableEntity,
		Message: msg,
		Fields:  fields,
	}
}

// FieldError is a single-field validation failure.
func FieldError(field, msg string) *HTTPError {
	return Validation(msg, map[string][]string{field: {msg}})
}

// Internal wraps an unexpected failure as a 500.
func Internal(msg string, cause error) *HTTPError {
	return &HTTPError{
		Code:    http.StatusInternalServerError,
		Message: msg,
		Cause:   cause,
	}
}

// As extracts an *HTTPError from err. Errors of any other type are reported
// as internal failures under fallback.
func As(err error, fallback string) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}
	return Internal(fallback, err)
}

// IsNotFound reports whether err carries a 404.
func IsNotFound(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Code == http.StatusNotFound
}
