// Package errors carries the error types shared by the dendrite scanning and
// generation tool chain. Runtime discovery errors live in pkg/dendrite; this
// package is about problems found in source files, so every error can carry a
// source location and fix suggestions.
package errors

import (
	"fmt"
	"strings"
)

// ErrorCode classifies tool-side errors
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota

	// SyntaxErrorCode marks a malformed //dendrite:: annotation
	SyntaxErrorCode

	// ValidationErrorCode marks an annotation that parsed but violates the
	// subscriber rules (parameters on a service method, missing result, ...)
	ValidationErrorCode

	// GenerationErrorCode marks a failure while rendering registration code
	GenerationErrorCode

	// FileSystemErrorCode marks read/write failures during scan or output
	FileSystemErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case SyntaxErrorCode:
		return "SyntaxError"
	case ValidationErrorCode:
		return "ValidationError"
	case GenerationErrorCode:
		return "GenerationError"
	case FileSystemErrorCode:
		return "FileSystemError"
	default:
		return "UnknownError"
	}
}

// SourceLocation points at the annotation or member an error refers to
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// String returns a formatted string representation of the location
func (s SourceLocation) String() string {
	if s.File == "" {
		return "unknown location"
	}
	if s.Line == 0 {
		return s.File
	}
	if s.Column == 0 {
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// IsEmpty returns true if the location has no useful information
func (s SourceLocation) IsEmpty() bool {
	return s.File == ""
}

// Error is the concrete error type used across the tool chain
type Error struct {
	Code    ErrorCode
	Message string
	Loc     SourceLocation
	Cause   error
	Hints   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	if !e.Loc.IsEmpty() {
		b.WriteString(e.Loc.String())
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	for _, hint := range e.Hints {
		b.WriteString("\n  hint: ")
		b.WriteString(hint)
	}
	return b.String()
}

// Unwrap returns the underlying cause for error chain inspection
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithLocation attaches a source location
func (e *Error) WithLocation(loc SourceLocation) *Error {
	e.Loc = loc
	return e
}

// WithCause attaches an underlying cause
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithSuggestion appends a fix suggestion shown below the error message
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Hints = append(e.Hints, suggestion)
	return e
}

// New creates an Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrapf creates an Error wrapping a cause with a formatted message
func Wrapf(code ErrorCode, cause error, format string, args ...interface{}) *Error {
	err := Newf(code, format, args...)
	err.Cause = cause
	return err
}
