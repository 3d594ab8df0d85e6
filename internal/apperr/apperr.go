// Package apperr defines the domain error taxonomy. Errors are raised at the
// point of violation and propagate unmodified to the HTTP boundary, where each
// kind maps to a fixed response shape.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error.
type Kind int

const (
	// KindInternal is the zero value for errors outside the taxonomy.
	KindInternal Kind = iota
	KindBadRequest
	KindNotFound
	KindUnauthorized
	KindInsufficientBalance
)

// Error is a classified domain error.
type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Kind returns the error's classification.
func (e *Error) Kind() Kind { return e.kind }

// BadRequest reports invalid input shape or value.
func BadRequest(format string, args ...any) error {
	return &Error{kind: KindBadRequest, msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a referenced entity that is absent or not owned by the caller.
func NotFound(format string, args ...any) error {
	return &Error{kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

// Unauthorized reports a missing, invalid, or expired credential.
func Unauthorized(format string, args ...any) error {
	return &Error{kind: KindUnauthorized, msg: fmt.Sprintf(format, args...)}
}

// InsufficientBalance reports a balance-sufficiency failure. It is surfaced
// distinctly from BadRequest so clients can render a targeted message.
func InsufficientBalance(format string, args ...any) error {
	return &Error{kind: KindInsufficientBalance, msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the classification of err, or KindInternal if err does not
// carry one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// IsNotFound reports whether err is classified as NotFound.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
