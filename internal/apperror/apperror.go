package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError carries an HTTP-style status code alongside the message so the
// error handler middleware can map failures without string matching.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewInvalidRequest(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message}
}

func NewMissingCredential(provider string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: fmt.Sprintf("Chat Error: User %s API key is required but was not provided.", provider),
	}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message}
}

// NewGenerationService wraps an upstream failure. code is the upstream
// HTTP status when known, otherwise 500.
func NewGenerationService(code int, message string, err error) *AppError {
	if code == 0 {
		code = http.StatusInternalServerError
	}
	if message == "" {
		message = "Failed to get valid response from AI service."
	}
	return &AppError{Code: code, Message: message, Err: err}
}

func NewInternal(message string, err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: message, Err: err}
}

func NewPersistence(message string, err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: message, Err: err}
}

// As unwraps err into *AppError when possible.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}
