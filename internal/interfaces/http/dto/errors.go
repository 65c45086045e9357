package dto

import "net/http"

// Error codes returned in the "code" field of error bodies. Domain codes
// pass through unchanged; the rest are produced by the HTTP layer itself.
const (
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeInvalidState      = "INVALID_STATE"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeTokenExpired      = "TOKEN_EXPIRED"
	ErrCodeTokenRevoked      = "TOKEN_REVOKED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeAlreadyExists     = "ALREADY_EXISTS"
	ErrCodeConflict          = "CONFLICT"
	ErrCodePayloadTooLarge   = "PAYLOAD_TOO_LARGE"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeUnavailable       = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation and workflow errors -> 400 Bad Request
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeValidation:        http.StatusBadRequest,
	ErrCodeInvalidInput:      http.StatusBadRequest,
	ErrCodeInvalidState:      http.StatusBadRequest,
	ErrCodeInvalidTransition: http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeUnavailable:     http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// InternalErrorMessage is the only text clients see for unexpected failures
const InternalErrorMessage = "internal server error"
