// Package errors provides structured error types for the sqltypes marshalling
// core. All errors include a category, code, message, and retryable flag so
// callers can tell a NULL violation from a malformed value or a failed sink.
package errors

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCategory classifies errors by the contract that raised them.
type ErrorCategory string

const (
	ErrCategoryNullViolation ErrorCategory = "NULL_VIOLATION"
	ErrCategoryEncode        ErrorCategory = "ENCODE"
	ErrCategoryDecode        ErrorCategory = "DECODE"
	ErrCategoryRegistration  ErrorCategory = "REGISTRATION"
	ErrCategoryInternal      ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Null violation codes
	CodeUnexpectedNull = "UNEXPECTED_NULL"

	// Encode codes
	CodeSinkWrite        = "SINK_WRITE"
	CodeUnsupportedValue = "UNSUPPORTED_VALUE"

	// Decode codes
	CodeMalformedBytes    = "MALFORMED_BYTES"
	CodeValueOutOfRange   = "VALUE_OUT_OF_RANGE"
	CodeUnsupportedTarget = "UNSUPPORTED_TARGET"
	CodeNoData            = "NO_DATA"

	// Registration codes
	CodeBackendNotBound  = "BACKEND_NOT_BOUND"
	CodeMetadataMismatch = "METADATA_MISMATCH"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// UnexpectedNullMessage is the message carried by every NULL violation.
const UnexpectedNullMessage = "Unexpected null for non-null column"

// ErrUnexpectedNull matches any NULL violation via errors.Is.
var ErrUnexpectedNull = New(ErrCategoryNullViolation, CodeUnexpectedNull, UnexpectedNullMessage)

// Error is the structured error type returned by every contract of the core.
type Error struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// GRPCStatus maps the error onto a gRPC status so RPC layers built on top of
// the core can return it unchanged.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(grpcCode(e.Category, e.Code), e.Error())
}

// New creates a new Error.
func New(category ErrorCategory, code, message string) *Error {
	return &Error{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *Error {
	return &Error{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details. Keys
// already present on e keep their value.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	cp := *e
	cp.Details = make(map[string]interface{}, len(e.Details)+len(details))
	for k, v := range details {
		cp.Details[k] = v
	}
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable by the caller.
// The core itself never retries.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// IsNullViolation reports whether err is a NULL violation.
func IsNullViolation(err error) bool {
	return GetCategory(err) == ErrCategoryNullViolation
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not an Error.
func GetCategory(err error) ErrorCategory {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not an Error.
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// isRetryable reports whether a caller may retry the same call. Only a failed
// sink write qualifies; bad values stay bad.
func isRetryable(category ErrorCategory, code string) bool {
	return category == ErrCategoryEncode && code == CodeSinkWrite
}

func grpcCode(category ErrorCategory, code string) codes.Code {
	switch category {
	case ErrCategoryNullViolation:
		return codes.FailedPrecondition
	case ErrCategoryEncode:
		if code == CodeSinkWrite {
			return codes.Unavailable
		}
		return codes.InvalidArgument
	case ErrCategoryDecode:
		if code == CodeValueOutOfRange {
			return codes.OutOfRange
		}
		return codes.DataLoss
	case ErrCategoryRegistration:
		return codes.Unimplemented
	default:
		return codes.Internal
	}
}

// Convenience constructors for common errors.

// NewUnexpectedNull returns the NULL violation raised when an absent column is
// decoded into a non-optional target.
func NewUnexpectedNull() *Error {
	return New(ErrCategoryNullViolation, CodeUnexpectedNull, UnexpectedNullMessage)
}

func NewEncodeError(code, message string, cause error) *Error {
	return Wrap(ErrCategoryEncode, code, message, cause)
}

func NewDecodeError(code, message string, cause error) *Error {
	return Wrap(ErrCategoryDecode, code, message, cause)
}

func NewRegistrationError(code, message string) *Error {
	return New(ErrCategoryRegistration, code, message)
}

func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}

// Unsupported returns an ENCODE error for a Go value the backend cannot encode.
func Unsupported(backend string, v any) *Error {
	return New(ErrCategoryEncode, CodeUnsupportedValue,
		fmt.Sprintf("%s: cannot encode value of type %T", backend, v))
}

// UnsupportedTarget returns a DECODE error for a destination the backend cannot fill.
func UnsupportedTarget(backend string, dst any) *Error {
	return New(ErrCategoryDecode, CodeUnsupportedTarget,
		fmt.Sprintf("%s: cannot decode into %T", backend, dst))
}

// Malformed returns a DECODE error for bytes that are not a valid encoding.
func Malformed(format string, args ...any) *Error {
	return New(ErrCategoryDecode, CodeMalformedBytes, fmt.Sprintf(format, args...))
}

// OutOfRange returns a DECODE error for a value that does not fit its target.
func OutOfRange(format string, args ...any) *Error {
	return New(ErrCategoryDecode, CodeValueOutOfRange, fmt.Sprintf(format, args...))
}
