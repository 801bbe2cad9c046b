package dto

import (
	"errors"
	"net/http"

	"github.com/eshaffer321/jarbudget-backend/internal/domain/jar"
)

// APIError represents a structured error response.
// All error responses from the API use this format for consistency.
type APIError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Jars    []string `json:"jars,omitempty"`
}

// Common error codes
const (
	ErrCodeNotFound          = "jar_not_found"
	ErrCodeBadRequest        = "bad_request"
	ErrCodeInternalError     = "internal_error"
	ErrCodeValidation        = "validation_error"
	ErrCodeDuplicateName     = "duplicate_name"
	ErrCodeInvalidAllocation = "invalid_allocation"
	ErrCodeDivisionByZero    = "division_by_zero"
)

// NewAPIError creates a new APIError with the given code and message.
func NewAPIError(code, message string) APIError {
	return APIError{
		Code:    code,
		Message: message,
	}
}

// BadRequestError creates a bad request error response.
func BadRequestError(message string) APIError {
	return NewAPIError(ErrCodeBadRequest, message)
}

// InternalError creates an internal server error response.
func InternalError() APIError {
	return NewAPIError(ErrCodeInternalError, "an internal error occurred")
}

// FromEngineError maps an engine failure to an HTTP status and error
// body. The engine's kind and message reach the caller verbatim so the
// UI (or an upstream agent) can surface or rephrase them.
func FromEngineError(err error) (int, APIError) {
	var engineErr *jar.Error
	if !errors.As(err, &engineErr) {
		return http.StatusInternalServerError, InternalError()
	}

	apiErr := APIError{
		Code:    string(engineErr.Kind),
		Message: engineErr.Message,
		Jars:    engineErr.Jars,
	}

	switch engineErr.Kind {
	case jar.KindValidation:
		return http.StatusBadRequest, apiErr
	case jar.KindNotFound:
		return http.StatusNotFound, apiErr
	case jar.KindDuplicateName:
		return http.StatusConflict, apiErr
	case jar.KindInvalidAllocation, jar.KindDivisionByZero:
		return http.StatusUnprocessableEntity, apiErr
	default:
		return http.StatusInternalServerError, InternalError()
	}
}
