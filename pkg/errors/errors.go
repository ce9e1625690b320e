// Package errors provides structured error types for gridsnap.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the board server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND: Resource not found
//   - NETWORK_*: Network-related errors
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidColumns, "columns must be >= 1, got %d", n)
//	if errors.Is(err, errors.ErrCodeInvalidColumns) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidColumns  Code = "INVALID_COLUMNS"
	ErrCodeInvalidAnchor   Code = "INVALID_ANCHOR"
	ErrCodeInvalidSort     Code = "INVALID_SORT"
	ErrCodeInvalidSizeMode Code = "INVALID_SIZE_MODE"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Selection errors
	ErrCodeEmptySelection Code = "EMPTY_SELECTION"
	ErrCodeMissingNumber  Code = "MISSING_NUMBER"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Image errors
	ErrCodeDecodeFailed   Code = "DECODE_FAILED"
	ErrCodeSamplingFailed Code = "SAMPLING_FAILED"

	// Collaborator errors
	ErrCodeCommitFailed Code = "COMMIT_FAILED"
	ErrCodeNetwork      Code = "NETWORK_ERROR"
	ErrCodeTimeout      Code = "TIMEOUT"

	// Operation state errors
	ErrCodeBusy Code = "BUSY"

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
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// As delegates to the standard library so callers matching concrete error
// types do not need a second errors import.
func As(err error, target any) bool {
	return errors.As(err, target)
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

// MaxExamples is the number of offending titles included in a
// MissingNumberError message.
const MaxExamples = 3

// MissingNumberError reports a strict numeric sort that found items whose
// titles carry no parseable number. It lists up to three example titles so
// the user can locate the offending widgets on the board.
type MissingNumberError struct {
	Examples []string // up to MaxExamples offending titles
	Total    int      // total count of unnumbered items
}

// Error implements the error interface.
func (e *MissingNumberError) Error() string {
	if len(e.Examples) == 0 {
		return "MISSING_NUMBER: selection contains items without a number in the title"
	}
	return fmt.Sprintf("MISSING_NUMBER: %d item(s) have no number in the title (e.g. %s)",
		e.Total, strings.Join(quoteAll(e.Examples), ", "))
}

// Code returns the error code for this error type.
func (e *MissingNumberError) Code() Code {
	return ErrCodeMissingNumber
}

// NewMissingNumber builds a MissingNumberError from the full list of
// offending titles, keeping at most MaxExamples of them.
func NewMissingNumber(titles []string) *MissingNumberError {
	e := &MissingNumberError{Total: len(titles)}
	for i, t := range titles {
		if i >= MaxExamples {
			break
		}
		e.Examples = append(e.Examples, t)
	}
	return e
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
