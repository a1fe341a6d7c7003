// Package apperror provides a structured way to handle application errors
// with specific codes, severity levels, and additional details. It also
// maps every code onto a process exit status for the command-line tools.
package apperror

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific application error code.
type ErrorCode string

const (
	// Input validation
	CodeInvalidArgument   ErrorCode = "INVALID_ARGUMENT"
	CodeEmptyTopology     ErrorCode = "EMPTY_TOPOLOGY"
	CodeSelfLoop          ErrorCode = "SELF_LOOP"
	CodeNodeOutOfRange    ErrorCode = "NODE_OUT_OF_RANGE"
	CodeDuplicateEdge     ErrorCode = "DUPLICATE_EDGE"
	CodeMatrixShape       ErrorCode = "MATRIX_SHAPE"
	CodeMatrixDiagonal    ErrorCode = "MATRIX_DIAGONAL"
	CodeNegativeIntensity ErrorCode = "NEGATIVE_INTENSITY"
	CodeCapacityTableSize ErrorCode = "CAPACITY_TABLE_SIZE"
	CodeNegativeCapacity  ErrorCode = "NEGATIVE_CAPACITY"
	CodeInvalidPacketSize ErrorCode = "INVALID_PACKET_SIZE"

	// Run parameters
	CodeInvalidProbability ErrorCode = "INVALID_PROBABILITY"
	CodeInvalidThreshold   ErrorCode = "INVALID_THRESHOLD"
	CodeInvalidTrials      ErrorCode = "INVALID_TRIALS"

	// Topology preconditions
	CodeDisconnectedTopology ErrorCode = "DISCONNECTED_TOPOLOGY"
	CodeTopologySaturated    ErrorCode = "TOPOLOGY_SATURATED"

	// Engine invariants
	CodeRouteInvariant ErrorCode = "ROUTE_INVARIANT"

	// General
	CodeInternal  ErrorCode = "INTERNAL_ERROR"
	CodeNotFound  ErrorCode = "NOT_FOUND"
	CodeNilInput  ErrorCode = "NIL_INPUT"
	CodeCancelled ErrorCode = "CANCELLED"
)

// Exit statuses returned by ExitCode.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitInvalidInput = 2
)

// Severity defines the criticality level of an error.
type Severity int

const (
	// SeverityWarning indicates a non-critical issue that can be ignored.
	SeverityWarning Severity = iota
	// SeverityError indicates a standard error that requires attention.
	SeverityError
	// SeverityCritical indicates a broken internal invariant.
	SeverityCritical
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Error is a custom error type that includes an ErrorCode, message,
// an optional field, additional details, an underlying cause, and a severity level.
type Error struct {
	Code     ErrorCode      // Code is a unique identifier for the type of error.
	Message  string         // Message is a human-readable description of the error.
	Field    string         // Field names the input that caused the error, if applicable.
	Details  map[string]any // Details provides additional structured information.
	Cause    error          // Cause is the underlying error, if any.
	Severity Severity       // Severity indicates the criticality level of the error.
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field: %s)", msg, e.Field)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsInputError reports whether the error was caused by invalid caller input
// rather than by a failure while running.
func (e *Error) IsInputError() bool {
	switch e.Code {
	case CodeInvalidArgument, CodeEmptyTopology, CodeSelfLoop, CodeNodeOutOfRange, CodeDuplicateEdge,
		CodeMatrixShape, CodeMatrixDiagonal, CodeNegativeIntensity,
		CodeCapacityTableSize, CodeNegativeCapacity, CodeInvalidPacketSize,
		CodeInvalidProbability, CodeInvalidThreshold, CodeInvalidTrials,
		CodeDisconnectedTopology, CodeNilInput:
		return true
	default:
		return false
	}
}

// New creates a new application error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// NewWithField creates a new application error bound to an input field.
func NewWithField(code ErrorCode, message, field string) *Error {
	err := New(code, message)
	err.Field = field
	return err
}

// NewCritical creates a new application error with SeverityCritical.
func NewCritical(code ErrorCode, message string) *Error {
	err := New(code, message)
	err.Severity = SeverityCritical
	return err
}

// Wrap creates a new application error that wraps an existing error.
func Wrap(cause error, code ErrorCode, message string) *Error {
	err := New(code, message)
	err.Cause = cause
	return err
}

// WithDetails adds a key-value pair to the error's details map.
func (e *Error) WithDetails(key string, value any) *Error {
	e.Details[key] = value
	return e
}

// WithField sets the field associated with the error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// Is checks if the given error is an application error with a matching ErrorCode.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from an error. If the error is not an *Error,
// it returns CodeInternal.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// IsCritical checks if the given error is an application error with SeverityCritical.
func IsCritical(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Severity == SeverityCritical
	}
	return false
}

// ExitCode maps an error onto a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *Error
	if errors.As(err, &appErr) && appErr.IsInputError() {
		return ExitInvalidInput
	}
	return ExitFailure
}

// ValidationErrors collects several validation failures so that a caller sees
// all of them at once.
type ValidationErrors struct {
	Errors []*Error
}

// NewValidationErrors creates an empty collection.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Errors: make([]*Error, 0)}
}

// Add appends an error.
func (v *ValidationErrors) Add(err *Error) {
	v.Errors = append(v.Errors, err)
}

// AddErrorWithField creates and adds an error bound to an input field.
func (v *ValidationErrors) AddErrorWithField(code ErrorCode, message, field string) {
	v.Add(NewWithField(code, message, field))
}

// HasErrors returns true if the collection is not empty.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// First returns the first collected error or nil.
func (v *ValidationErrors) First() *Error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v.Errors[0]
}

// Err returns nil when the collection is empty. Otherwise it returns the first error
// with the rest attached under the "also" detail key.
func (v *ValidationErrors) Err() error {
	if !v.HasErrors() {
		return nil
	}
	first := v.First()
	if len(v.Errors) > 1 {
		rest := make([]string, 0, len(v.Errors)-1)
		for _, e := range v.Errors[1:] {
			rest = append(rest, e.Error())
		}
		first.WithDetails("also", rest)
	}
	return first
}
