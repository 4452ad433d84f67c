package apperrors

import (
	"errors"
	"fmt"
)

// ErrorType classifies recoverable failures of the transform pipeline.
type ErrorType string

const (
	ErrParse           ErrorType = "PARSE_ERROR"
	ErrNormalize       ErrorType = "NORMALIZE_ERROR"
	ErrRender          ErrorType = "RENDER_ERROR"
	ErrFileNotFound    ErrorType = "FILE_NOT_FOUND"
	ErrIO              ErrorType = "IO_ERROR"
	ErrInvalidArgument ErrorType = "INVALID_ARGUMENT"
)

// AppError is the standard error struct for the application.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another *AppError with the same type, so callers can write
// errors.Is(err, apperrors.Parse).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type && t.Message == "" && t.Cause == nil
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: msg,
		Cause:   cause,
	}
}

// Sentinels for errors.Is.
var (
	Parse           = &AppError{Type: ErrParse}
	Normalize       = &AppError{Type: ErrNormalize}
	Render          = &AppError{Type: ErrRender}
	FileNotFound    = &AppError{Type: ErrFileNotFound}
	IO              = &AppError{Type: ErrIO}
	InvalidArgument = &AppError{Type: ErrInvalidArgument}
)

func NewParse(msg string) *AppError {
	return New(ErrParse, msg, nil)
}

func NewNormalize(msg string, cause error) *AppError {
	return New(ErrNormalize, msg, cause)
}

func NewRender(msg string, cause error) *AppError {
	return New(ErrRender, msg, cause)
}

func NewInvalidArgument(msg string) *AppError {
	return New(ErrInvalidArgument, msg, nil)
}

// TypeOf returns the type of the first *AppError in err's chain, or "" if none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}
