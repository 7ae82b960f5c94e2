// Package domainerrors defines the error taxonomy shared by every layer of the
// service. Infrastructure packages return sentinel errors; services translate
// those into coded errors and may only add context, never change the code.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers and for the HTTP boundary.
type Code string

const (
	// CodeInvalidArgument marks caller errors. Never retried automatically.
	CodeInvalidArgument Code = "invalid_argument"
	// CodeNotFound marks reads whose target does not exist.
	CodeNotFound Code = "not_found"
	// CodeUnavailable marks transport failures reaching the ledger node.
	// Reads are safe to retry; writes require caller judgment.
	CodeUnavailable Code = "unavailable"
	// CodeTimeout marks an indeterminate outcome: no confirmation was observed
	// within the deadline, but the transaction may still finalize. Callers must
	// reconcile by re-reading state, not retry blindly.
	CodeTimeout Code = "timeout"
	// CodeRejected marks remote validation failures. Not retryable without
	// changing the intent.
	CodeRejected Code = "rejected"
	// CodeProtocolViolation marks a result shape inconsistent with the ledger's
	// documented contract. Always surfaced, never swallowed.
	CodeProtocolViolation Code = "protocol_violation"
	// CodeCredentialUnavailable marks a missing or unusable signing identity.
	// Fatal at startup.
	CodeCredentialUnavailable Code = "credential_unavailable"
	// CodeUnauthorized marks missing or invalid caller credentials at the
	// HTTP boundary.
	CodeUnauthorized Code = "unauthorized"
	// CodeInternal marks unexpected failures inside this service.
	CodeInternal Code = "internal_error"
)

// Error carries a code plus a human-readable message. It wraps an underlying
// cause when created via Wrap.
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

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an existing error. If err already
// carries a code, that code wins: wrapping adds context but never reclassifies.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	if existing := CodeOf(err); existing != "" {
		code = existing
	}
	return &Error{Code: code, Message: message, cause: err}
}

// CodeOf returns the code carried by err, or "" when err is uncoded.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// MessageOf returns the message of a coded error, or err.Error() otherwise.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
