package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a gmtrack error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404 (backup artifacts)
	ErrCorruptBackup  ErrorCode = "CORRUPT_BACKUP"  // 422
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// GMError represents a structured error with code, status, and details.
type GMError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *GMError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *GMError {
	return &GMError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing record.
func NewNotFound(identifier string) *GMError {
	return &GMError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("record not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing backup file.
func NewFileNotFound(filename string) *GMError {
	return &GMError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("backup file not found: %s", filename),
		Details: map[string]any{"filename": filename},
	}
}

// NewCorruptBackup creates a 422 error for an unreadable backup file.
func NewCorruptBackup(filename string, err error) *GMError {
	details := map[string]any{"filename": filename}
	if err != nil {
		details["parse_error"] = err.Error()
	}
	return &GMError{
		Code:    ErrCorruptBackup,
		Status:  422,
		Message: fmt.Sprintf("backup file %s is corrupt or unreadable", filename),
		Details: details,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message is generic; the underlying error is kept in Details for logging
// so SQL errors and file paths are not exposed to clients.
func NewInternal(err error) *GMError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &GMError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error is (or wraps) a GMError with the given code.
func Is(err error, code ErrorCode) bool {
	var gmErr *GMError
	if stderrors.As(err, &gmErr) {
		return gmErr.Code == code
	}
	return false
}
