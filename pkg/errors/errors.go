package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents a specific error type
type ErrorCode string

const (
	// Business logic errors
	ErrorCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrorCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrorCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrorCodeConflict     ErrorCode = "CONFLICT"

	// Technical errors
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrorCodeDatabase ErrorCode = "DATABASE_ERROR"
	ErrorCodeTimeout  ErrorCode = "TIMEOUT_ERROR"

	// Request errors
	ErrorCodeBadRequest       ErrorCode = "BAD_REQUEST"
	ErrorCodeMissingParameter ErrorCode = "MISSING_PARAMETER"
)

// AppError represents a structured application error
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Cause     error                  `json:"-"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error wrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ToJSON converts the error to JSON for API responses
func (e *AppError) ToJSON() []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"error":      e.Message,
		"code":       e.Code,
		"details":    e.Details,
		"timestamp":  e.Timestamp,
		"request_id": e.RequestID,
	})
	return data
}

// GetHTTPStatus returns the appropriate HTTP status code for the error
func (e *AppError) GetHTTPStatus() int {
	switch e.Code {
	case ErrorCodeValidation, ErrorCodeBadRequest, ErrorCodeMissingParameter:
		return http.StatusBadRequest
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Details:   make(map[string]interface{}),
		Timestamp: time.Now(),
	}
}

// NewAppErrorWithCause creates a new application error with an underlying cause
func NewAppErrorWithCause(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Details:   make(map[string]interface{}),
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithRequestID adds a request ID to the error
func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// Predefined error constructors for common cases

// ValidationError creates a validation error
func ValidationError(message string) *AppError {
	return NewAppError(ErrorCodeValidation, message)
}

// ValidationErrorWithDetails creates a validation error with field details
func ValidationErrorWithDetails(message string, fields map[string]string) *AppError {
	err := NewAppError(ErrorCodeValidation, message)
	for field, msg := range fields {
		err.WithDetail(field, msg)
	}
	return err
}

// NotFoundError creates a not found error
func NotFoundError(resource string) *AppError {
	return NewAppError(ErrorCodeNotFound, fmt.Sprintf("%s not found", resource))
}

// ConflictError carries a business rule rejection whose message is shown verbatim.
func ConflictError(message string, cause error) *AppError {
	return NewAppErrorWithCause(ErrorCodeConflict, message, cause)
}

// UnauthorizedError creates an authentication failure
func UnauthorizedError(message string) *AppError {
	return NewAppError(ErrorCodeUnauthorized, message)
}

// DatabaseError creates a database error. The cause text is appended to the
// message so operators see what the store reported.
func DatabaseError(message string, cause error) *AppError {
	if cause != nil {
		message = fmt.Sprintf("%s: %v", message, cause)
	}
	return NewAppErrorWithCause(ErrorCodeDatabase, message, cause)
}

// InternalError creates an internal server error
func InternalError(message string, cause error) *AppError {
	return NewAppErrorWithCause(ErrorCodeInternal, message, cause)
}

// TimeoutError creates a timeout error
func TimeoutError(operation string) *AppError {
	return NewAppError(ErrorCodeTimeout, fmt.Sprintf("timeout during %s", operation))
}

// BadRequestError creates a bad request error
func BadRequestError(message string) *AppError {
	return NewAppError(ErrorCodeBadRequest, message)
}

// MissingParameterError reports a required request field that was absent
func MissingParameterError(name string) *AppError {
	return NewAppError(ErrorCodeMissingParameter, fmt.Sprintf("%s is required", name)).
		WithDetail(name, "required")
}

// Error handling utilities

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError converts an error to AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// WrapError wraps a generic error as an internal error
func WrapError(err error, message string) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return NewAppErrorWithCause(ErrorCodeInternal, message, err)
}
