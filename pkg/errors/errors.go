// Package errors defines the application error taxonomy.
// Handlers map AppError types to HTTP responses; everything below the handler
// layer returns plain errors or AppErrors and never writes to the response.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of an error.
type ErrorType string

const (
	// Domain errors
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"

	// Application errors
	ErrorTypeInternal  ErrorType = "INTERNAL"
	ErrorTypeRateLimit ErrorType = "RATE_LIMIT"

	// Infrastructure errors
	ErrorTypeDatabase ErrorType = "DATABASE"
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// AppError is the application-specific error type.
type AppError struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches structured details to the error.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// HTTPStatus returns the status code the error maps to.
func (e *AppError) HTTPStatus() int {
	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrorTypeForbidden:
		return http.StatusForbidden
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case ErrorTypeDatabase, ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Constructors

// NewValidation creates a validation error.
func NewValidation(message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// NewNotFound creates a not-found error for the named resource.
func NewNotFound(resource string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: resource + " not found"}
}

// NewConflict creates a conflict error.
func NewConflict(message string) *AppError {
	return &AppError{Type: ErrorTypeConflict, Message: message}
}

// NewUnauthorized creates an unauthorized error.
func NewUnauthorized(message string) *AppError {
	return &AppError{Type: ErrorTypeUnauthorized, Message: message}
}

// NewForbidden creates a forbidden error.
func NewForbidden(message string) *AppError {
	return &AppError{Type: ErrorTypeForbidden, Message: message}
}

// NewInternal creates an internal error wrapping err.
func NewInternal(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, Cause: err}
}

// NewDatabase wraps an error from the document store. The cause is preserved
// unmodified for callers that need the underlying client error.
func NewDatabase(operation string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeDatabase,
		Message: "database operation failed: " + operation,
		Cause:   err,
	}
}

// NewExternal wraps an error from a third-party service.
func NewExternal(service string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: service + " request failed",
		Cause:   err,
	}
}

// Predicates

// GetAppError returns the AppError in err's chain, or nil.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks whether err is an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsValidation checks for a validation error.
func IsValidation(err error) bool { return IsType(err, ErrorTypeValidation) }

// IsNotFound checks for a not-found error.
func IsNotFound(err error) bool { return IsType(err, ErrorTypeNotFound) }

// IsConflict checks for a conflict error.
func IsConflict(err error) bool { return IsType(err, ErrorTypeConflict) }

// Wrap wraps err with additional context, preserving an existing AppError's
// type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		return &AppError{
			Type:    appErr.Type,
			Message: message + ": " + appErr.Message,
			Details: appErr.Details,
			Cause:   appErr,
		}
	}
	return &AppError{Type: ErrorTypeInternal, Message: message, Cause: err}
}
