package apperror

import (
	"errors"
	"net/http"
)

// AppError carries the HTTP status an error should be reported with
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`

	cause error
}

// FieldError names one field, or one print transport, and what went wrong with it
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

var (
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "Invalid pairing code"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NewValidationError creates a 422 listing every invalid field
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error for the named resource
func NewNotFoundError(resource string) *AppError {
	return NewAppError(http.StatusNotFound, resource+" not found")
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return NewAppError(http.StatusConflict, message)
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message)
}

// NewBadGatewayError reports that no downstream device accepted the request.
// Each field error names one transport and why it failed.
func NewBadGatewayError(message string, fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Message: message,
		Errors:  fieldErrors,
	}
}

// NewServiceUnavailableError creates a 503 error with a custom message
func NewServiceUnavailableError(message string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, message)
}

// Internal wraps an unexpected error. The cause is kept for logs and never
// shown to clients.
func Internal(cause error) *AppError {
	return &AppError{Code: ErrInternalServer.Code, Message: ErrInternalServer.Message, cause: cause}
}

// GetAppError converts an error to AppError, treating anything else as internal
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
