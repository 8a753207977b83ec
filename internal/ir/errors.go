package ir

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrorCode categorizes failures surfaced to callers.
type ErrorCode string

const (
	// ErrCodeMalformedLog indicates an event sequence violates the log
	// invariants. The build is rejected, never repaired.
	ErrCodeMalformedLog ErrorCode = "MALFORMED_LOG"

	// ErrCodeOutOfRange indicates a step index outside [0, n-1].
	ErrCodeOutOfRange ErrorCode = "OUT_OF_RANGE"

	// ErrCodeNotFound indicates an unknown execution id.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeStoreUnavailable indicates the persistence boundary failed.
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
)

// Error is the structured error type for the taxonomy above, except
// OutOfRange which has its own type so it can carry the valid range.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ExecutionID identifies the affected execution, if any.
	ExecutionID string

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.ExecutionID != "" {
		msg = fmt.Sprintf("%s (execution=%s)", msg, e.ExecutionID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewMalformedLogError creates a MalformedLog error.
func NewMalformedLogError(format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeMalformedLog,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewNotFoundError creates a NotFound error for an execution id.
func NewNotFoundError(executionID string) *Error {
	return &Error{
		Code:        ErrCodeNotFound,
		Message:     "execution not found",
		ExecutionID: executionID,
	}
}

// NewStoreUnavailableError wraps a persistence failure.
func NewStoreUnavailableError(op string, err error) *Error {
	return &Error{
		Code:    ErrCodeStoreUnavailable,
		Message: op,
		Err:     err,
	}
}

// StepOutOfRangeError is returned when a replay step index is outside the
// log. MaxIndex is the largest valid index.
type StepOutOfRangeError struct {
	ExecutionID string
	Index       int
	MaxIndex    int
}

// Error implements the error interface.
func (e *StepOutOfRangeError) Error() string {
	return fmt.Sprintf("%s: step %d outside [0, %d]", ErrCodeOutOfRange, e.Index, e.MaxIndex)
}

// Details returns the valid range as string fields for transports.
func (e *StepOutOfRangeError) Details() map[string]string {
	return map[string]string{
		"index":     strconv.Itoa(e.Index),
		"max_index": strconv.Itoa(e.MaxIndex),
	}
}

// CodeOf returns the taxonomy code of err, or "" if err is not part of it.
func CodeOf(err error) ErrorCode {
	var se *StepOutOfRangeError
	if errors.As(err, &se) {
		return ErrCodeOutOfRange
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsMalformedLog reports whether err is a MalformedLog error.
func IsMalformedLog(err error) bool {
	return CodeOf(err) == ErrCodeMalformedLog
}

// IsOutOfRange reports whether err is a step out-of-range error.
func IsOutOfRange(err error) bool {
	return CodeOf(err) == ErrCodeOutOfRange
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsStoreUnavailable reports whether err is a StoreUnavailable error.
func IsStoreUnavailable(err error) bool {
	return CodeOf(err) == ErrCodeStoreUnavailable
}
