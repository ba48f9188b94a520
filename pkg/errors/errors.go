// Package errors provides structured error types for the Stackplan engine.
//
// Every operation of the scheduling engine returns either success or an
// *Error carrying one of the codes below. Codes are machine-readable so an
// application layer can map them to its own responses without string
// matching:
//
//	err := errors.New(errors.ErrCodeCycleDetected, "dependency %s -> %s closes a cycle", a, b)
//	if errors.Is(err, errors.ErrCodeCycleDetected) {
//	    // reject the user's edit
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, parseErr, "invalid date %q", s)
//
// # Invariant violations
//
// [ErrCodeNegativeUsageCount] signals a consistency bug (a release without a
// matching assignment) rather than a rejected user input. Use
// [IsInvariantViolation] to route it separately.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the scheduling engine.
const (
	// Graph errors
	ErrCodeCycleDetected         Code = "CYCLE_DETECTED"
	ErrCodeInvalidDependencyType Code = "INVALID_DEPENDENCY_TYPE"
	ErrCodeDuplicateDependency   Code = "DUPLICATE_DEPENDENCY"
	ErrCodeHasDependents         Code = "HAS_DEPENDENTS"
	ErrCodeDateBeforeMinimum     Code = "DATE_BEFORE_DEPENDENCY_MINIMUM"

	// Resource errors
	ErrCodeInsufficientCapacity Code = "INSUFFICIENT_CAPACITY"
	ErrCodeNegativeUsageCount   Code = "NEGATIVE_USAGE_COUNT"
	ErrCodeAlreadyExclusive     Code = "ALREADY_EXCLUSIVE"
	ErrCodeResourceReserved     Code = "RESOURCE_RESERVED"

	// Status errors
	ErrCodeInvalidTransition Code = "INVALID_TRANSITION"

	// Input errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeDuplicateID  Code = "DUPLICATE_ID"
	ErrCodeNotFound     Code = "NOT_FOUND"

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

// IsInvariantViolation reports whether err signals an internal consistency
// bug instead of a rejected input.
func IsInvariantViolation(err error) bool {
	switch GetCode(err) {
	case ErrCodeNegativeUsageCount, ErrCodeInternal:
		return true
	default:
		return false
	}
}
