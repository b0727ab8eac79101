// Package derrors provides coded domain errors shared across services.
//
// Services translate infrastructure sentinels (pkg/platform/sentinel) into
// these coded errors at the boundary; handlers translate codes into HTTP
// status via ToHTTPStatus. Codes are stable API, messages are not.
package derrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation covers precondition violations on input values
	// (non-positive amounts, empty titles, unknown enum values).
	CodeValidation Code = "validation_error"

	// CodeMissingConsent is a validation failure specific to case creation
	// without explicit patient consent. Kept distinct so callers can render
	// the consent requirement explicitly.
	CodeMissingConsent Code = "missing_consent"

	// CodeBadRequest covers malformed requests (unparseable body, bad IDs).
	CodeBadRequest Code = "bad_request"

	// CodeNotFound means the referenced entity does not exist.
	CodeNotFound Code = "not_found"

	// CodeInvalidState means a state machine rejected the transition, or an
	// operation was attempted against an entity in the wrong state.
	CodeInvalidState Code = "invalid_state"

	// CodeConflict is transient contention (lost a conditional update,
	// duplicate transaction id). Retried internally with a bounded budget;
	// when surfaced, the caller may retry.
	CodeConflict Code = "conflict"

	// CodeUnauthorized means the caller did not present valid credentials
	// for a protected operation.
	CodeUnauthorized Code = "unauthorized"

	// CodeUnavailable means a backing dependency is temporarily down.
	CodeUnavailable Code = "unavailable"

	// CodeInternal is an unexpected failure; details are never exposed.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with a human-readable message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. A nil cause
// yields nil so call sites can wrap unconditionally.
func Wrap(cause error, code Code, message string) error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: cause}
}

// HasCode reports whether err (or anything it wraps) carries the code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		if err == nil {
			return false
		}
	}
	return false
}

// Is is shorthand for HasCode, mirroring errors.Is call sites.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the outermost code, defaulting to CodeInternal for
// uncoded errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Message returns the outermost coded message, or the plain error text.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// IsRetryable reports whether the failure is transient and worth retrying.
func IsRetryable(err error) bool {
	return HasCode(err, CodeConflict) || HasCode(err, CodeUnavailable)
}

var httpStatus = map[Code]int{
	CodeValidation:     http.StatusUnprocessableEntity,
	CodeMissingConsent: http.StatusUnprocessableEntity,
	CodeBadRequest:     http.StatusBadRequest,
	CodeNotFound:       http.StatusNotFound,
	CodeInvalidState:   http.StatusConflict,
	CodeConflict:       http.StatusConflict,
	CodeUnauthorized:   http.StatusUnauthorized,
	CodeUnavailable:    http.StatusServiceUnavailable,
	CodeInternal:       http.StatusInternalServerError,
}

// ToHTTPStatus maps a code to its HTTP response status.
func ToHTTPStatus(code Code) int {
	if status, ok := httpStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
