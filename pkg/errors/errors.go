// Package errors provides structured error types for contactsheet.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the sheet model, export pipeline and CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes mirror the failure taxonomy of the contact sheet:
//   - CAPACITY_EXCEEDED: adding images would push the sheet past nine slots
//   - EMPTY_MODEL: export was requested for a sheet without images
//   - RENDER_FAILURE: a source image could not be decoded or drawn
//   - ENCODE_FAILURE / WRITE_FAILURE: document assembly or persistence failed
//   - EXPORT_IN_PROGRESS: a second export was requested while one is running
//   - INVALID_*: caller input validation failures
//
// None of these failures mutate the sheet; the caller decides whether to retry.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeCapacityExceeded, "sheet holds at most %d images", 9)
//	if errors.Is(err, errors.ErrCodeCapacityExceeded) {
//	    // Tell the user
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeWriteFailure, origErr, "write %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Sheet model errors
	ErrCodeCapacityExceeded Code = "CAPACITY_EXCEEDED"
	ErrCodeInvalidIndex     Code = "INVALID_INDEX"

	// Export pipeline errors
	ErrCodeEmptyModel       Code = "EMPTY_MODEL"
	ErrCodeRenderFailure    Code = "RENDER_FAILURE"
	ErrCodeEncodeFailure    Code = "ENCODE_FAILURE"
	ErrCodeWriteFailure     Code = "WRITE_FAILURE"
	ErrCodeExportInProgress Code = "EXPORT_IN_PROGRESS"
	ErrCodeCancelled        Code = "CANCELLED"

	// Input validation errors
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidOrientation Code = "INVALID_ORIENTATION"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig      Code = "INVALID_CONFIG"
	ErrCodeInvalidPath        Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
// Only the outermost *Error is consulted, so a wrapped cause with a different
// code does not match.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
