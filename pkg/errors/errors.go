package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigSave  ErrorCode = "CONFIG_SAVE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Profile errors
	ErrProfileNotFound ErrorCode = "PROFILE_NOT_FOUND"
	ErrProfileInvalid  ErrorCode = "PROFILE_INVALID"
	ErrProfileExists   ErrorCode = "PROFILE_EXISTS"

	// Manifest errors
	ErrManifestSave ErrorCode = "MANIFEST_SAVE"

	// Sync errors
	ErrSyncAborted ErrorCode = "SYNC_ABORTED"
	ErrHash        ErrorCode = "HASH"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
)

// NojoError represents a structured error with code and details
type NojoError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *NojoError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *NojoError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *NojoError) Is(target error) bool {
	var targetErr *NojoError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new NojoError with the given code and message
func New(code ErrorCode, message string) *NojoError {
	return &NojoError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new NojoError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *NojoError {
	return &NojoError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a NojoError
func Wrap(err error, code ErrorCode, message string) *NojoError {
	if err == nil {
		return nil
	}
	return &NojoError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *NojoError {
	if err == nil {
		return nil
	}
	return &NojoError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *NojoError) WithDetail(key string, value interface{}) *NojoError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var nojoErr *NojoError
	if errors.As(err, &nojoErr) {
		return nojoErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a NojoError
func GetErrorCode(err error) ErrorCode {
	var nojoErr *NojoError
	if errors.As(err, &nojoErr) {
		return nojoErr.Code
	}
	return ErrUnknown
}
