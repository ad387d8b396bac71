package common

import (
	"errors"
	"fmt"
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

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrLayoutImport = errors.New("layout import failed")
	ErrDocument     = errors.New("document processing failed")
	ErrUnsupported  = errors.New("unsupported")
	ErrValidation   = errors.New("validation failed")
)

// Error codes used with AppError.
const (
	CodeConfig   = "CONFIG_ERROR"
	CodeLayout   = "LAYOUT_ERROR"
	CodeDocument = "DOCUMENT_ERROR"
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

// DocumentError wraps a per-document failure so callers can match ErrDocument.
func DocumentError(stage string, err error) error {
	if err == nil {
		return nil
	}
	return NewAppError(CodeDocument, stage, fmt.Errorf("%w: %w", ErrDocument, err))
}
