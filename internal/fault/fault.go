// Package fault defines the error kinds returned by the exchange core.
//
// Every error produced by exchange, messaging and review is a *Error whose
// Kind is one of the sentinels below, so callers can branch with errors.Is
// without parsing messages. Storage errors are not faults; they are wrapped
// and surfaced unchanged.
package fault

import (
	"errors"
	"fmt"
)

// Error kinds. None of them are retryable.
var (
	ErrValidation        = errors.New("validation error")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidState      = errors.New("invalid state")
	ErrNotFound          = errors.New("not found")
	ErrDuplicateReview   = errors.New("duplicate review")
	ErrEditWindowExpired = errors.New("edit window expired")
)

// Error is a fault of a specific kind carrying a detailed message.
type Error struct {
	Kind error
	Msg  string
}

// Error returns the detailed message.
func (e *Error) Error() string { return e.Msg }

// Unwrap exposes the kind to errors.Is.
func (e *Error) Unwrap() error { return e.Kind }

// New builds a fault of the given kind with a formatted message.
func New(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Validation reports malformed or missing input.
func Validation(format string, args ...any) error {
	return New(ErrValidation, format, args...)
}

// InvalidRequest reports a request that cannot be opened against its target.
func InvalidRequest(format string, args ...any) error {
	return New(ErrInvalidRequest, format, args...)
}

// Unauthorized reports an actor acting outside their role.
func Unauthorized(format string, args ...any) error {
	return New(ErrUnauthorized, format, args...)
}

// InvalidTransition reports a status change the state machine forbids.
func InvalidTransition(format string, args ...any) error {
	return New(ErrInvalidTransition, format, args...)
}

// InvalidState reports an action the request's current status does not allow.
func InvalidState(format string, args ...any) error {
	return New(ErrInvalidState, format, args...)
}

// NotFound reports a missing request, review, listing or user.
func NotFound(format string, args ...any) error {
	return New(ErrNotFound, format, args...)
}

// DuplicateReview reports a second review by the same author on a request.
func DuplicateReview(format string, args ...any) error {
	return New(ErrDuplicateReview, format, args...)
}

// EditWindowExpired reports an edit attempted after the review's edit window.
func EditWindowExpired(format string, args ...any) error {
	return New(ErrEditWindowExpired, format, args...)
}

var kinds = []error{
	ErrValidation,
	ErrInvalidRequest,
	ErrUnauthorized,
	ErrInvalidTransition,
	ErrInvalidState,
	ErrNotFound,
	ErrDuplicateReview,
	ErrEditWindowExpired,
}

// KindOf returns the fault kind of err, or nil if err is not a fault.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Message returns the caller-facing message for a fault kind. Each kind has
// a distinct message; unknown errors get a generic one.
func Message(err error) string {
	switch KindOf(err) {
	case ErrValidation:
		return "The submitted data is invalid."
	case ErrInvalidRequest:
		return "This exchange cannot be requested."
	case ErrUnauthorized:
		return "You are not allowed to perform this action."
	case ErrInvalidTransition:
		return "This request can no longer be changed."
	case ErrInvalidState:
		return "This action is not possible in the exchange's current state."
	case ErrNotFound:
		return "The requested resource does not exist."
	case ErrDuplicateReview:
		return "You have already reviewed this exchange."
	case ErrEditWindowExpired:
		return "This review can no longer be edited."
	default:
		return "An unexpected error occurred."
	}
}
