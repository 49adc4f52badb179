package domain

import (
	"errors"
	"fmt"
)

// ErrKind classifies a service-surface failure. The engine itself cannot
// fail: every numeric input is clamped or defaulted before use, so only
// boundary failures carry a kind.
type ErrKind string

const (
	// KindValidation marks a malformed request, rejected before any state
	// is touched.
	KindValidation ErrKind = "validation"
	// KindNotFound marks an unknown run id, or one owned by someone else.
	KindNotFound ErrKind = "not_found"
	// KindInvalidState marks an operation illegal for the run's current
	// mode or status, such as stepping an ended or auto run.
	KindInvalidState ErrKind = "invalid_state"
	// KindCollaborator marks a narrative-provider failure. It is recovered
	// locally via the deterministic fallbacks and never surfaces to callers.
	KindCollaborator ErrKind = "collaborator_unavailable"
	// KindStorage marks a persistence failure, surfaced to the caller as
	// retryable. No implicit retries happen inside the service.
	KindStorage ErrKind = "storage_failure"
)

// Error is a kinded service error.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a kinded error with a formatted message.
func E(kind ErrKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind ErrKind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind of err, or KindStorage for unclassified errors.
func KindOf(err error) ErrKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStorage
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrKind) bool {
	return KindOf(err) == kind
}
