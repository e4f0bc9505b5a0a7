package types

import (
	"errors"
	"net/http"

	"github.com/habmon/habmon/internal/apperr"
)

// FromAppError converts err to an APIError. Errors without an apperr code
// are reported as internal without exposing their text.
func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}
	var ae *apperr.AppError
	if errors.As(err, &ae) {
		return &APIError{Code: string(ae.Code), Message: ae.Message, Details: ae.Meta}
	}
	return &APIError{Code: string(apperr.CodeInternal), Message: "internal server error"}
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch apperr.CodeOf(err) {
	case "":
		return http.StatusOK
	case apperr.CodeInvalid:
		return http.StatusBadRequest
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeConflict:
		return http.StatusConflict
	case apperr.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
