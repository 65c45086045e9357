package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code,
// so errors.Is(err, ErrNotFound) matches every not-found error.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error carrying an underlying cause
func WrapDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewValidationError creates a validation error with the given message
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewNotFoundError creates a not found error for the named entity
func NewNotFoundError(entity string) *DomainError {
	return NewDomainError(CodeNotFound, entity+" not found")
}

// NewForbiddenError creates a forbidden error with the given message
func NewForbiddenError(message string) *DomainError {
	return NewDomainError(CodeForbidden, message)
}

// Error codes
const (
	CodeNotFound          = "NOT_FOUND"
	CodeAlreadyExists     = "ALREADY_EXISTS"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeInvalidState      = "INVALID_STATE"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeConflict          = "CONFLICT"
)

// Common domain errors
var (
	ErrNotFound          = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists     = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput      = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrValidation        = NewDomainError(CodeValidation, "Validation failed")
	ErrUnauthorized      = NewDomainError(CodeUnauthorized, "Authentication required")
	ErrForbidden         = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInvalidState      = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInvalidTransition = NewDomainError(CodeInvalidTransition, "Status transition not allowed")
	ErrConflict          = NewDomainError(CodeConflict, "Resource conflicts with an existing one")
)
