// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure raised while driving the portal carries a machine-readable Kind
// and a short human-friendly message; the wrapped cause holds the detail that
// only goes to the log channel.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// DriverInit indicates the browser session could not be started.
	DriverInit Kind = "driver_init"
	// Auth indicates the portal rejected the login or the outcome was ambiguous.
	Auth Kind = "auth"
	// NotFound indicates a project id or UI control could not be resolved.
	NotFound Kind = "not_found"
	// Ambiguous indicates a fuzzy match produced more than one candidate.
	Ambiguous Kind = "ambiguous"
	// EmptyResult indicates a query that worked mechanically but matched nothing.
	EmptyResult Kind = "empty_result"
	// Submit indicates no submit control was found for an action form.
	Submit Kind = "submit"
	// NotConfigured indicates missing admin credentials or portal settings.
	NotConfigured Kind = "not_configured"
	// Invalid indicates a malformed request (missing project, bad record id).
	Invalid Kind = "invalid"
	// Unexpected covers everything else.
	Unexpected Kind = "unexpected"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or Unexpected.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// Message returns the short user-facing message of err. Errors that are not
// an *E yield fallback so raw driver text never reaches the result channel.
func Message(err error, fallback string) string {
	var e *E
	if stderrors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
