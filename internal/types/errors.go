package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for advisor pipeline errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// Data and graph error codes
const (
	DATA_MISSING        ErrorCode = "DATA_MISSING"
	DATA_LOAD_FAILED    ErrorCode = "DATA_LOAD_FAILED"
	GRAPH_BUILD_PARTIAL ErrorCode = "GRAPH_BUILD_PARTIAL"
	GRAPH_NOT_READY     ErrorCode = "GRAPH_NOT_READY"
)

// Retrieval error codes
const (
	STORE_FAILED     ErrorCode = "STORE_FAILED"
	EMBEDDING_FAILED ErrorCode = "EMBEDDING_FAILED"
	SEARCH_FAILED    ErrorCode = "SEARCH_FAILED"
	CACHE_FAILED     ErrorCode = "CACHE_FAILED"
)

// Pipeline error codes
const (
	UPSTREAM_FAILED   ErrorCode = "UPSTREAM_FAILED"
	GENERATION_FAILED ErrorCode = "GENERATION_FAILED"
	INVALID_INPUT     ErrorCode = "INVALID_INPUT"
)

// AdvisorError represents a structured error with error code, message, and
// optional cause. It supports error wrapping and retryability hints.
type AdvisorError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *AdvisorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/errors.As chains.
func (e *AdvisorError) Unwrap() error {
	return e.Cause
}

// Is matches errors by code so callers can compare against sentinel
// AdvisorErrors without caring about message text.
func (e *AdvisorError) Is(target error) bool {
	var advErr *AdvisorError
	if errors.As(target, &advErr) {
		return e.Code == advErr.Code
	}
	return false
}

// NewError creates a new non-retryable AdvisorError with the given code and message.
func NewError(code ErrorCode, message string) *AdvisorError {
	return &AdvisorError{
		Code:    code,
		Message: message,
	}
}

// NewErrorf creates a new non-retryable AdvisorError with a formatted message.
func NewErrorf(code ErrorCode, format string, args ...any) *AdvisorError {
	return &AdvisorError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewRetryableError creates a new retryable AdvisorError. Use for transient
// failures that may succeed on retry (network timeouts, rate limits).
func NewRetryableError(code ErrorCode, message string) *AdvisorError {
	return &AdvisorError{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// WrapError creates a non-retryable AdvisorError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for chain inspection.
func WrapError(code ErrorCode, message string, cause error) *AdvisorError {
	return &AdvisorError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the ErrorCode carried by err, or empty string when err is
// not an AdvisorError.
func CodeOf(err error) ErrorCode {
	var advErr *AdvisorError
	if errors.As(err, &advErr) {
		return advErr.Code
	}
	return ""
}

// IsInvalidInput reports whether err is an INVALID_INPUT error. This is the
// one error category component boundaries surface to callers synchronously.
func IsInvalidInput(err error) bool {
	return CodeOf(err) == INVALID_INPUT
}
