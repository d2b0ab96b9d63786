// Package errors provides structured error types for rnaviz.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Structure errors (INVALID_ALPHABET, MALFORMED_PAIRING, INDEX_OUT_OF_RANGE,
// SELF_PAIRING) are raised while building a structure graph and are fatal to
// the request. DISCONNECTED_GRAPH is a layout-time warning: the layout that
// accompanies it is complete. RENDER_TARGET_UNAVAILABLE reports output that
// could not be written. None of these are retried.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "unknown format: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRenderTarget, origErr, "write %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Structure construction errors
	ErrCodeInvalidAlphabet  Code = "INVALID_ALPHABET"
	ErrCodeMalformedPairing Code = "MALFORMED_PAIRING"
	ErrCodeIndexOutOfRange  Code = "INDEX_OUT_OF_RANGE"
	ErrCodeSelfPairing      Code = "SELF_PAIRING"

	// Layout errors
	ErrCodeDisconnectedGraph Code = "DISCONNECTED_GRAPH"
	ErrCodeInvalidLayout     Code = "INVALID_LAYOUT"
	ErrCodeInvalidLayoutMode Code = "INVALID_LAYOUT_MODE"

	// Render errors
	ErrCodeRenderTarget  Code = "RENDER_TARGET_UNAVAILABLE"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidColor  Code = "INVALID_COLOR"

	// Input and configuration errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// warningCodes lists codes whose errors accompany a usable result.
var warningCodes = map[Code]bool{
	ErrCodeDisconnectedGraph: true,
}

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
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsWarning reports whether err is non-fatal, meaning the result returned
// alongside it is complete and usable.
func IsWarning(err error) bool {
	return warningCodes[GetCode(err)]
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
