package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and the HTTP layer.
type Kind int

const (
	// KindInternal is an unexpected collaborator failure; never retried here.
	KindInternal Kind = iota
	// KindValidation is malformed or out-of-range input, with field detail.
	KindValidation
	// KindNotFound means the referenced document is absent.
	KindNotFound
	// KindForbidden is an ownership/role denial inside the caller's tenant.
	KindForbidden
	// KindCrossOrg is a cross-tenant denial; kept distinct from KindForbidden
	// so callers can tell "wrong tenant" from "wrong owner".
	KindCrossOrg
	// KindConflict is an optimistic-concurrency conflict; the caller may retry.
	KindConflict
	// KindTimeout means collaborator I/O exceeded its budget; retryable.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindCrossOrg:
		return "cross_org_access_denied"
	case KindConflict:
		return "concurrent_modification"
	case KindTimeout:
		return "timeout"
	}
	return "internal"
}

// Error is a typed error value carrying a Kind and, for validation errors,
// the offending field.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.Field, e.Msg, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a field-level validation error.
func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

// NotFound builds a not-found error for the given document id.
func NotFound(id string) *Error {
	return &Error{Kind: KindNotFound, Msg: "document not found: " + id}
}

// Forbidden builds an in-tenant authorization denial.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

// CrossOrg builds a cross-tenant authorization denial.
func CrossOrg(msg string) *Error {
	return &Error{Kind: KindCrossOrg, Msg: msg}
}

// Conflict builds an optimistic-concurrency conflict error.
func Conflict(id string) *Error {
	return &Error{Kind: KindConflict, Msg: "concurrent modification: " + id}
}

// Timeout wraps a deadline failure from a collaborator call.
func Timeout(op string, err error) *Error {
	return &Error{Kind: KindTimeout, Msg: op + " timed out", Err: err}
}

// Internal wraps an unexpected collaborator failure.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf extracts the Kind from err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
