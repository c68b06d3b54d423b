package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure by how a caller can recover from it.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindConflict           ErrorKind = "conflict"
	KindNotFound           ErrorKind = "not_found"
	KindFatalInconsistency ErrorKind = "fatal_inconsistency"
	KindTransport          ErrorKind = "transport"
	KindInternal           ErrorKind = "internal"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrAdminNotFound      = errors.New("administrator not found")
	ErrDeletionInProgress = errors.New("tenant deletion already in progress")
)

// KindOf walks the error chain and reports its kind. Unclassified errors are internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var k interface{ Kind() ErrorKind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	switch {
	case errors.Is(err, ErrTenantNotFound), errors.Is(err, ErrAdminNotFound):
		return KindNotFound
	case errors.Is(err, ErrDeletionInProgress):
		return KindConflict
	}
	return KindInternal
}

// ValidationError is returned for malformed or missing input. It is always
// raised before any store call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Kind() ErrorKind { return KindValidation }

// SlugConflictError is returned when a tenant slug is already in use.
type SlugConflictError struct {
	Slug string
}

func (e *SlugConflictError) Error() string {
	return fmt.Sprintf("slug %q is already in use", e.Slug)
}

func (e *SlugConflictError) Kind() ErrorKind { return KindConflict }

// RetiredIDError is returned when a tenant id has been used before.
type RetiredIDError struct {
	ID string
}

func (e *RetiredIDError) Error() string {
	return fmt.Sprintf("tenant id %q has already been used", e.ID)
}

func (e *RetiredIDError) Kind() ErrorKind { return KindConflict }

// DuplicateAdminError is returned when a tenant already has an administrator with the email.
type DuplicateAdminError struct {
	TenantID string
	Email    string
}

func (e *DuplicateAdminError) Error() string {
	return fmt.Sprintf("administrator %q already exists for tenant %q", e.Email, e.TenantID)
}

func (e *DuplicateAdminError) Kind() ErrorKind { return KindConflict }

// ConflictError is a store-side business-rule rejection without a more specific type.
type ConflictError struct {
	Reason string
	Err    error
}

func (e *ConflictError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ConflictError) Unwrap() error   { return e.Err }
func (e *ConflictError) Kind() ErrorKind { return KindConflict }

// TransitionError is returned when a state transition is not allowed.
type TransitionError struct {
	Event   AdminEvent
	Current AdminStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}

func (e *TransitionError) Kind() ErrorKind { return KindValidation }

// FatalInconsistencyError reports a cascading operation that may have left
// partial state behind. It must not be retried blindly.
type FatalInconsistencyError struct {
	TenantID string
	Err      error
}

func (e *FatalInconsistencyError) Error() string {
	return fmt.Sprintf("tenant %s may be partially deleted: %v", e.TenantID, e.Err)
}

func (e *FatalInconsistencyError) Unwrap() error   { return e.Err }
func (e *FatalInconsistencyError) Kind() ErrorKind { return KindFatalInconsistency }

// PartialCascadeError is raised by a store that could not complete a cascade atomically.
type PartialCascadeError struct {
	TenantID string
	Err      error
}

func (e *PartialCascadeError) Error() string {
	return fmt.Sprintf("cascade for tenant %s stopped part-way: %v", e.TenantID, e.Err)
}

func (e *PartialCascadeError) Unwrap() error { return e.Err }

// TransportError wraps network or backend unavailability. Retrying may succeed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error   { return e.Err }
func (e *TransportError) Kind() ErrorKind { return KindTransport }
