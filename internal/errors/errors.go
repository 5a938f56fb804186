package errors

import (
	"errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
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

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// GetCode returns the error code if it's an AppError, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeNetwork       = "NETWORK_ERROR"
	CodeParse         = "PARSE_ERROR"
	CodeIO            = "IO_ERROR"
	CodeModel         = "MODEL_ERROR"
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeNotFound      = "NOT_FOUND"
	CodeInternal      = "INTERNAL_ERROR"
)

// Retryable reports whether the error is a transient failure worth retrying.
// Only network failures qualify; parse and IO errors never do.
func Retryable(err error) bool {
	return GetCode(err) == CodeNetwork
}

// Common error constructors

func NetworkError(message string, cause error) *AppError {
	return &AppError{Code: CodeNetwork, Message: message, Cause: cause}
}

func ParseError(message string, cause error) *AppError {
	return &AppError{Code: CodeParse, Message: message, Cause: cause}
}

// IOError carries the destination path so batch callers can surface it.
func IOError(path string, cause error) *AppError {
	return &AppError{Code: CodeIO, Message: fmt.Sprintf("write %s failed", path), Cause: cause}
}

func ModelError(message string, cause error) *AppError {
	return &AppError{Code: CodeModel, Message: message, Cause: cause}
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}
