package common

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	CodeConfig             = "CONFIG_ERROR"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeNotFound           = "NOT_FOUND"
	CodeDatabase           = "DATABASE_ERROR"
	CodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	CodeUpstreamExtraction = "UPSTREAM_EXTRACTION"
)

// Common application errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInternal           = errors.New("internal error")
	ErrDatabase           = errors.New("database error")
	ErrValidation         = errors.New("validation failed")
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	ErrUpstreamExtraction = errors.New("text extraction failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ExtractionError reports that no text could be produced for filename.
func ExtractionError(filename string, cause error) *AppError {
	return NewAppError(CodeUpstreamExtraction, filename, errors.Join(ErrUpstreamExtraction, cause))
}

// HTTPStatus maps an error to the status code the dashboard answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrUpstreamExtraction):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
