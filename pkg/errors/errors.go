// Package errors defines the structured error taxonomy shared by the API
// packages, with a stable mapping from error codes to HTTP status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes used across all packages
const (
	// Generic errors
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden        ErrorCode = "FORBIDDEN"
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeEndpointNotFound ErrorCode = "ENDPOINT_NOT_FOUND"

	// Validation errors
	ErrCodeMissingRequired       ErrorCode = "MISSING_REQUIRED"
	ErrCodeInvalidEmail          ErrorCode = "INVALID_EMAIL"
	ErrCodeInvalidUsernameFormat ErrorCode = "INVALID_USERNAME_FORMAT"
	ErrCodePasswordComplexity    ErrorCode = "PASSWORD_COMPLEXITY"
	ErrCodeGroupNotFound         ErrorCode = "GROUP_NOT_FOUND"
	ErrCodeInvalidDomain         ErrorCode = "INVALID_DOMAIN"

	// User/Account errors
	ErrCodeUserAlreadyExists ErrorCode = "USER_ALREADY_EXISTS"
	ErrCodeUserLimitReached  ErrorCode = "USER_LIMIT_REACHED"

	// Permission errors
	ErrCodeInsufficientPermissions ErrorCode = "INSUFFICIENT_PERMISSIONS"

	// Persistence errors
	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
)

// Error represents a structured error with code, message, and optional details
type Error struct {
	Code    ErrorCode              // Unique error code
	Message string                 // Human-readable error message
	Details map[string]interface{} // Optional additional details
	Err     error                  // Wrapped underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *Error) HTTPStatusCode() int {
	return MapErrorCodeToHTTPStatus(e.Code)
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with code and message
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
// Returns ErrCodeInternal if the error is not a structured Error
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// GetDetails extracts the details from an error
// Returns nil if the error is not a structured Error
func GetDetails(err error) map[string]interface{} {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

// MapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func MapErrorCodeToHTTPStatus(code ErrorCode) int {
	switch code {
	// 400 Bad Request
	case ErrCodeMissingRequired, ErrCodeInvalidEmail, ErrCodeInvalidUsernameFormat,
		ErrCodePasswordComplexity, ErrCodeGroupNotFound, ErrCodeInvalidDomain:
		return http.StatusBadRequest

	// 401 Unauthorized
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized

	// 403 Forbidden
	case ErrCodeForbidden, ErrCodeInsufficientPermissions, ErrCodeUserLimitReached:
		return http.StatusForbidden

	// 404 Not Found
	case ErrCodeEndpointNotFound:
		return http.StatusNotFound

	// 405 Method Not Allowed
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed

	// 409 Conflict
	case ErrCodeUserAlreadyExists:
		return http.StatusConflict

	// 500 Internal Server Error (default)
	case ErrCodeInternal, ErrCodePersistenceFailed:
		fallthrough
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors for frequently used errors

// Unauthorized creates an "unauthorized" error
func Unauthorized(message string) *Error {
	return New(ErrCodeUnauthorized, message)
}

// Forbidden creates a "forbidden" error
func Forbidden(message string) *Error {
	return New(ErrCodeForbidden, message)
}

// Internal creates an "internal error"
func Internal(message string) *Error {
	return New(ErrCodeInternal, message)
}

// MissingFields creates a "missing required fields" error listing the fields
func MissingFields(fields []string) *Error {
	return New(ErrCodeMissingRequired, "Missing required fields").
		WithDetail("missing_fields", fields)
}

// PasswordComplexity creates a password policy error listing every unmet requirement
func PasswordComplexity(requirementErrors []string) *Error {
	return New(ErrCodePasswordComplexity, "Password does not meet requirements").
		WithDetail("password_errors", requirementErrors)
}
