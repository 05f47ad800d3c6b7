// Package errors provides structured errors with actionable suggestions.
// Every user-facing failure states what went wrong and what to do about it.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing failures.
const (
	ErrConfig  = "CONFIG"  // configuration file problems
	ErrSpawn   = "SPAWN"   // the ssh child process could not be started
	ErrSession = "SESSION" // pty/session plumbing failures
	ErrAuth    = "AUTH"    // authentication rejected by the remote
	ErrHostKey = "HOSTKEY" // untrusted host key, operator action required
)

// Error is a structured error with code, message, suggestion, and optional
// cause. Rendered as:
//
//	✗ <what failed>
//
//	  <why it failed>
//
//	  <how to fix it>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{Code: code, Message: message, Suggestion: suggestion}
}

// Wrap wraps an existing error with a message, defaulting to ErrSession.
func Wrap(err error, message string) *Error {
	return &Error{Code: ErrSession, Message: message, Cause: err}
}

// WrapWithCode wraps an existing error with a specific code, message, and
// suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{Code: code, Message: message, Suggestion: suggestion, Cause: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Code == code
	}
	return false
}
