package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents a standardized application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"` // Internal error for logging
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the internal error to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NotFound creates a 404 error
func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

// TooManyRequests creates a 429 error
func TooManyRequests(message string) *AppError {
	return New(http.StatusTooManyRequests, message, nil)
}

// Internal creates a 500 error
func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}

// From converts any error into an AppError, treating unknown errors as internal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
