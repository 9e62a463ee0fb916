// Package errs defines the error-kind taxonomy from spec §7 and a single
// wrapping constructor, generalizing the teacher's consistent
// fmt.Errorf("doing X: %w", err) idiom into a dispatchable kind so callers
// at the top of a cycle can errors.As into *errs.Error and act on .Kind.
package errs

import (
	"errors"
	"fmt"
)

// Kind is one of the error categories spec §7 defines a policy for.
type Kind string

const (
	// TransientCache covers cache I/O failures expected to clear on the
	// next tick. No in-cycle retry; retried by the caller's next poll.
	TransientCache Kind = "transient_cache"

	// TransientDB covers relational store I/O failures expected to clear
	// on the next tick.
	TransientDB Kind = "transient_db"

	// DataFormat covers a malformed queue entry or missing survey key.
	// The entry is skipped this tick: never marked processed, never paired.
	DataFormat Kind = "data_format"

	// LockContention means another instance holds the leadership lock.
	// The cycle is skipped silently; this is an expected operational signal.
	LockContention Kind = "lock_contention"

	// ExternalService covers notifier delivery failures. Logged only;
	// never affects a data store.
	ExternalService Kind = "external_service"

	// FatalConfig aborts the process after logging, at startup only.
	FatalConfig Kind = "fatal_config"
)

// Error wraps a cause with a Kind and free-form context for logging.
type Error struct {
	Kind    Kind
	Context string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Context)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Context, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// E constructs a *Error carrying kind, a short human context string, and
// the underlying cause (may be nil).
func E(kind Kind, context string, cause error) error {
	return &Error{Kind: kind, Context: context, Cause: cause}
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, and reports whether one was found.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err's Kind equals kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
