// Package apperr is the error taxonomy shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the stable machine code clients branch on.
type Kind string

const (
	KindValidation Kind = "VALIDATION_ERROR"
	KindNotFound   Kind = "NOT_FOUND"
	KindStorage    Kind = "DATABASE_ERROR"
	KindInternal   Kind = "INTERNAL_ERROR"
)

// Name is the human-readable error class reported in the envelope.
func (k Kind) Name() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFoundError"
	case KindStorage:
		return "StorageError"
	default:
		return "InternalError"
	}
}

// Error carries a kind, a message for clients, optional details and the cause.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed or missing input.
func Validation(msg string, details map[string]any) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

// NotFound reports an id that does not resolve to a live record.
func NotFound(msg string, details map[string]any) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Details: details}
}

// Storage wraps a persistence failure. The cause is kept for logging only.
func Storage(msg string, err error) *Error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// WithCause attaches err as the cause and returns e.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal for errors outside the taxonomy.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return KindInternal
}
