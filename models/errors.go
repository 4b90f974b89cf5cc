package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies operation failures so handlers can map them to
// distinct HTTP statuses and clients can tell "doesn't exist" from "not yours".
type ErrorKind int

const (
	// ErrValidation marks malformed input; nothing was mutated.
	ErrValidation ErrorKind = iota
	// ErrNotFound marks a missing report, alert or admin.
	ErrNotFound
	// ErrAuthorization marks a role or jurisdiction mismatch.
	ErrAuthorization
	// ErrConflict marks a lost persistence race; the caller should retry
	// from a fresh read.
	ErrConflict
	// ErrDependency marks a failed external collaborator.
	ErrDependency
)

// Error is a classified service error.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError reports malformed input, naming the offending value.
func NewValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewAuthorizationError reports a role or jurisdiction mismatch.
func NewAuthorizationError(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrAuthorization, Message: fmt.Sprintf(format, args...)}
}

// NewConflictError reports a lost write race.
func NewConflictError(message string, err error) *Error {
	return &Error{Kind: ErrConflict, Message: message, Err: err}
}

// NewDependencyError reports a failed external collaborator.
func NewDependencyError(message string, err error) *Error {
	return &Error{Kind: ErrDependency, Message: message, Err: err}
}

// KindOf extracts the kind from err, defaulting to ErrDependency for
// unclassified errors.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ErrDependency
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}
