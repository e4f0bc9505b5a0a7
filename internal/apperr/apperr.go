// Package apperr defines the error taxonomy surfaced to callers of habmon's
// services.
package apperr

import (
	"errors"
	"fmt"
)

// Code is a stable error code for programmatic handling.
type Code string

const (
	CodeUnknown     Code = "unknown"
	CodeInvalid     Code = "invalid"
	CodeNotFound    Code = "not_found"
	CodeConflict    Code = "conflict"
	CodeInternal    Code = "internal"
	CodeUnavailable Code = "unavailable"
)

// AppError carries a code, a caller-facing message and optional metadata.
type AppError struct {
	Code    Code
	Message string
	Err     error
	Meta    map[string]any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *AppError) Unwrap() error { return e.Err }

// WithMeta attaches metadata to the error.
func (e *AppError) WithMeta(k string, v any) *AppError {
	if e.Meta == nil {
		e.Meta = map[string]any{}
	}
	e.Meta[k] = v
	return e
}

// New creates an AppError with code and message.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Errorf creates an AppError with a formatted message.
func Errorf(code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with code and message. A nil err yields a plain New.
func Wrap(err error, code Code, message string) *AppError {
	if err == nil {
		return New(code, message)
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// NotFound reports that the named resource does not exist.
func NotFound(what string) *AppError {
	return Errorf(CodeNotFound, "%s not found", what).WithMeta("target", what)
}

// Conflict reports that the target already exists.
func Conflict(format string, args ...any) *AppError {
	return Errorf(CodeConflict, format, args...)
}

// Invalid reports malformed input.
func Invalid(format string, args ...any) *AppError {
	return Errorf(CodeInvalid, format, args...)
}

// IsCode checks if err carries code anywhere in its chain.
func IsCode(err error, code Code) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// CodeOf returns the code of the first AppError in err's chain, or
// CodeInternal for any other non-nil error.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}
