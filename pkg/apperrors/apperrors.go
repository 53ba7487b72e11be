package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error so handlers can map it to an HTTP
// status without string matching.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindForbidden
	KindInvalidTransition
	KindConflict
	KindNotFound
)

// Error is the typed error returned by all lifecycle operations. Every
// mutating operation either returns a valid entity or one of these kinds.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap attaches an underlying cause while keeping the kind.
func (e *Error) Wrap(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: err}
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation flags missing or malformed input, correctable by the caller.
func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

// Forbidden flags an actor lacking the role required for an action.
func Forbidden(format string, args ...interface{}) *Error {
	return newf(KindForbidden, format, args...)
}

// InvalidTransition flags a state that no longer permits the requested move,
// usually because another actor already acted.
func InvalidTransition(format string, args ...interface{}) *Error {
	return newf(KindInvalidTransition, format, args...)
}

// Conflict flags a concurrent-mutation race such as a duplicate check-in.
func Conflict(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

// NotFound flags an absent entity or access code.
func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

// KindOf extracts the kind from an error chain, KindUnknown if none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the HTTP status handlers should respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidTransition, KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
