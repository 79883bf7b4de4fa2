// Package errcode defines the service-wide error taxonomy. Flows return an
// *Error carrying a stable machine code plus a human-readable message; callers
// match on the code with CodeOf instead of comparing error strings.
package errcode

import (
	"errors"
	"fmt"
)

// Code identifies a failure class. Codes are part of the API contract and
// must stay stable across releases.
type Code string

const (
	CodeInvalidToken       Code = "InvalidToken"
	CodeTokenExpired       Code = "TokenExpired"
	CodeAlreadyVerified    Code = "AlreadyVerified"
	CodeLoginFailed        Code = "LoginFailed"
	CodeEmailNotVerified   Code = "EmailNotVerified"
	CodeAccountDisabled    Code = "AccountDisabled"
	CodeEmailAlreadyExists Code = "EmailAlreadyExists"
	CodeUserNotFound       Code = "UserNotFound"
	CodePasswordReuse      Code = "PasswordReuse"
	CodeEmailSendFailed    Code = "EmailSendFailed"
	CodeResourceNotFound   Code = "ResourceNotFound"
	CodeSystemError        Code = "SystemError"
)

// Error couples a taxonomy code with a message safe to show to API clients.
// The wrapped cause, if any, stays server-side.
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

// New returns an *Error with the given code and client-facing message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches an internal cause to a taxonomy error. The cause is available
// through errors.Unwrap but is never rendered to clients.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// System wraps an unexpected infrastructure failure as CodeSystemError.
func System(cause error) *Error {
	return &Error{Code: CodeSystemError, Message: "internal error, please try again later", cause: cause}
}

// CodeOf extracts the taxonomy code from err. Errors outside the taxonomy
// report CodeSystemError so that no internal detail leaks by default.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeSystemError
}

// MessageOf returns the client-facing message for err, falling back to a
// generic message for errors outside the taxonomy.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error, please try again later"
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
