// Package errors provides structured error types for isocell.
//
// Storage and codec failures are reported as *Error values carrying a
// machine-readable [Code]. This lets a caller at the service boundary tell
// "no such edge attribute" (a valid all-zero decode, no error at all) apart
// from "store unreadable" (an error with [ErrCodeCorruptStore]).
//
// # Error Codes
//
// Codes group into storage lifecycle failures (ALREADY_INITIALIZED,
// SCHEMA_MISMATCH, CORRUPT_STORE, STORE_NOT_FOUND), field codec failures
// (DOMAIN_OVERFLOW, UNSUPPORTED_FIELD_OPERATION) and generic input or
// internal failures.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeSchemaMismatch, "stride %d, want %d", got, want)
//	if errors.Is(err, errors.ErrCodeSchemaMismatch) {
//	    // Refuse to read the store
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeCorruptStore, origErr, "load %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Storage lifecycle errors
	ErrCodeAlreadyInitialized Code = "ALREADY_INITIALIZED"
	ErrCodeSchemaMismatch     Code = "SCHEMA_MISMATCH"
	ErrCodeCorruptStore       Code = "CORRUPT_STORE"
	ErrCodeStoreNotFound      Code = "STORE_NOT_FOUND"

	// Field codec errors
	ErrCodeDomainOverflow       Code = "DOMAIN_OVERFLOW"
	ErrCodeUnsupportedOperation Code = "UNSUPPORTED_FIELD_OPERATION"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Internal errors
	ErrCodeInternal  Code = "INTERNAL_ERROR"
	ErrCodeCancelled Code = "CANCELLED"
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

// OverflowError carries the offending value for a field encode that was
// rejected because the value does not fit the field's domain.
type OverflowError struct {
	Field string
	Value int64
	Min   int64
	Max   int64
}

// Error implements the error interface.
func (e *OverflowError) Error() string {
	return fmt.Sprintf("field %q: value %d outside [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

// Overflow builds a DOMAIN_OVERFLOW *Error whose cause is an *OverflowError.
func Overflow(field string, value, min, max int64) *Error {
	return Wrap(ErrCodeDomainOverflow, &OverflowError{Field: field, Value: value, Min: min, Max: max},
		"value does not fit field %s", field)
}
