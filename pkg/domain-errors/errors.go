// Package domainerrors defines the service-level failure taxonomy.
//
// Services return *Error values so transports can map a failure to a status
// code without inspecting messages. Storage failures keep their storage kind
// (see pkg/platform/sentinel) inside a CodeRepository error so the transport can
// still tell a missing row from a duplicate.
package domainerrors

import (
	"errors"
	"fmt"

	"nolatabs/pkg/platform/sentinel"
)

// Code classifies a service failure.
type Code string

const (
	CodeRepository     Code = "repository_error"
	CodeInvalidInput   Code = "invalid_input"
	CodeAuthentication Code = "authentication_error"
	CodeAuthorization  Code = "authorization_error"
	CodeUnknown        Code = "unknown_error"
)

// Error is a coded service failure.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error without a cause.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// FromStore translates a storage failure into a repository error. Errors that
// carry no storage kind are reported as CodeUnknown.
func FromStore(err error, msg string) error {
	if err == nil {
		return nil
	}
	if sentinel.Kind(err) == nil {
		return Wrap(err, CodeUnknown, msg)
	}
	return Wrap(err, CodeRepository, msg)
}

// CodeOf returns the code of the outermost *Error in err's chain.
func CodeOf(err error) (Code, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Code, true
	}
	return "", false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
