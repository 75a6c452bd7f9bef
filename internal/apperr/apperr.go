// Package apperr provides the application's error taxonomy.
package apperr

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	// CodeValidation marks malformed caller input: unknown log-type tags,
	// mismatched batch lengths, non-positive k. Never retried.
	CodeValidation = "VALIDATION_ERROR"

	// CodeFile marks an unreadable path or an invalid top-level document.
	// Fatal for the ingest attempt, zero side effects.
	CodeFile = "FILE_ERROR"

	// CodeParse marks one malformed record inside an otherwise valid file.
	// Recovered locally: the record is skipped and parsing continues.
	CodeParse = "PARSE_ERROR"

	// CodeProvider marks an embedding or generative backend that is
	// unavailable, unauthenticated or network-failed. Fatal for the current
	// operation, no automatic retry or provider fallback.
	CodeProvider = "PROVIDER_ERROR"
)

// AppError is an error with a stable code for dispatch at the boundary.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// New creates an AppError with the given code.
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates an AppError with a formatted message.
func Newf(code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a code and message.
func Wrap(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Validation creates a validation error.
func Validation(message string) *AppError { return New(CodeValidation, message) }

// File creates a file error.
func File(message string, err error) *AppError { return Wrap(CodeFile, message, err) }

// Provider creates a provider error.
func Provider(message string, err error) *AppError { return Wrap(CodeProvider, message, err) }

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
