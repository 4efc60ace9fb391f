package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error so handlers can map it to an HTTP status
type Kind string

const (
	KindNotAuthenticated Kind = "not_authenticated"
	KindNotAuthorized    Kind = "not_authorized"
	KindNotFound         Kind = "not_found"
	KindConflict         Kind = "conflict"
	KindExpired          Kind = "expired"
	KindValidation       Kind = "validation"
	// KindCritical marks a post-condition violation that left partial state
	// behind. Callers must surface it distinctly ("contact support") instead
	// of offering a retry.
	KindCritical Kind = "critical"
)

// Error is a typed application error
type Error struct {
	Kind    Kind
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

// KindOf returns the Kind of err, or an empty Kind for untyped errors
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func NotAuthenticated(message string) *Error {
	return &Error{Kind: KindNotAuthenticated, Message: message}
}

func NotAuthorized(reason string) *Error {
	return &Error{Kind: KindNotAuthorized, Message: reason}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Expired(message string) *Error {
	return &Error{Kind: KindExpired, Message: message}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Critical wraps err as a critical error with context about the partial state
func Critical(message string, err error) *Error {
	return &Error{Kind: KindCritical, Message: message, Err: err}
}
