// Package errs provides coded errors for the palletizer.
//
// Codes are machine-readable and map onto the failure taxonomy of a run:
//   - INVALID_INPUT: precondition violations, rejected before any engine call
//   - ENGINE_FAILURE / ENGINE_TIMEOUT: placement engine errors, recovered by the stacker
//   - NOT_FOUND, STORAGE_ERROR: run history lookups and persistence
//   - INTERNAL_ERROR: anything unexpected
//
// Infeasibility (an item the engine could not place) and safety-cap
// exhaustion are normal outcomes and never surface as errors.
package errs

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	CodeInvalidInput  Code = "INVALID_INPUT"
	CodeEngineFailure Code = "ENGINE_FAILURE"
	CodeEngineTimeout Code = "ENGINE_TIMEOUT"
	CodeNotFound      Code = "NOT_FOUND"
	CodeStorage       Code = "STORAGE_ERROR"
	CodeInternal      Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

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

// Invalid is shorthand for an INVALID_INPUT error naming the offending field.
func Invalid(field string, format string, args ...any) *Error {
	return &Error{
		Code:    CodeInvalidInput,
		Message: field + ": " + fmt.Sprintf(format, args...),
	}
}

// Is reports whether any *Error in err's tree has the given code.
// Joined errors match if any member carries the code.
func Is(err error, code Code) bool {
	switch x := err.(type) {
	case nil:
		return false
	case *Error:
		return x.Code == code || Is(x.Cause, code)
	case interface{ Unwrap() []error }:
		for _, member := range x.Unwrap() {
			if Is(member, code) {
				return true
			}
		}
		return false
	case interface{ Unwrap() error }:
		return Is(x.Unwrap(), code)
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no *Error is found in the chain.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			msg := ""
			for i, member := range joined.Unwrap() {
				if i > 0 {
					msg += "; "
				}
				msg += UserMessage(member)
			}
			return msg
		}
		return e.Message
	}
	return err.Error()
}
