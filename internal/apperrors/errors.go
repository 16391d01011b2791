// Package apperrors defines transport-agnostic error codes for the service.
// Codes describe what went wrong in business terms; the HTTP layer owns the
// translation to status codes.
package apperrors

import "errors"

// Code categorizes an application error.
type Code string

const (
	CodeInvalidInput         Code = "invalid_input"
	CodeNotFound             Code = "not_found"
	CodeConflict             Code = "conflict"
	CodeAlreadyAuthenticated Code = "already_authenticated"
	CodeUnauthorized         Code = "unauthorized"
	CodeForbidden            Code = "forbidden"
	CodeUnavailable          Code = "unavailable"
	CodeInternal             Code = "internal_error"
)

// Error wraps domain or infrastructure failures with a stable code.
// Field is set for invalid_input errors so the client can highlight the
// offending form field.
type Error struct {
	Code    Code
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors by code so callers can use errors.Is with sentinel-style
// comparisons.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates an error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Invalid creates a field-level validation error.
func Invalid(field, reason string) error {
	return &Error{Code: CodeInvalidInput, Field: field, Message: reason}
}

// Wrap attaches a code to an underlying error. An existing coded error keeps
// its original code.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Field: existing.Field, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// FieldOf returns the field name of an invalid_input error, or "".
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
