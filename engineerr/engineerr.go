// Package engineerr defines the error taxonomy shared by every snapshot
// engine component, per the propagation policy of spec §7.
package engineerr

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error so callers can branch on failure mode
// without parsing messages.
type Kind int

const (
	// CurrencyMismatch is a programming error: arithmetic between two Money
	// values tagged with different currencies.
	CurrencyMismatch Kind = iota
	// Overflow is raised when an exact-decimal value exceeds the engine's
	// representable bounds.
	Overflow
	// InvalidMovement is raised when a movement variant violates the
	// invariants of the Movement Model (C2).
	InvalidMovement
	// ContractKeyMismatch is raised by the Option Pair Matcher (C3) when a
	// close references a key with no opposite legs in strict mode.
	ContractKeyMismatch
	// UnmatchedClose flags a close whose quantity exceeds the available
	// opposite legs, when the source data is declared pair-consistent.
	UnmatchedClose
	// MissingAccount is a referential-integrity failure: an operation named
	// an account id the store does not know.
	MissingAccount
	// MissingTicker is a referential-integrity failure: an operation named
	// a ticker id the store does not know.
	MissingTicker
	// StoreConflict signals that a concurrent replaceSuffix call raced and
	// lost; it is retriable.
	StoreConflict
	// Cancelled signals batch cancellation; never logged as an error.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case CurrencyMismatch:
		return "CurrencyMismatch"
	case Overflow:
		return "Overflow"
	case InvalidMovement:
		return "InvalidMovement"
	case ContractKeyMismatch:
		return "ContractKeyMismatch"
	case UnmatchedClose:
		return "UnmatchedClose"
	case MissingAccount:
		return "MissingAccount"
	case MissingTicker:
		return "MissingTicker"
	case StoreConflict:
		return "StoreConflict"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Error wraps an underlying cause with its Kind.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// New builds a Kind-tagged error with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a Kind-tagged error around an existing cause.
func Wrap(kind Kind, err error, format string, args ...any) error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), err: err}
}

// Is reports whether err (or one of its wrapped causes) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for errors.As(err, &e) {
		if e.Kind == kind {
			return true
		}
		if e.err == nil {
			return false
		}
		err = e.err
	}
	return false
}

// KindOf extracts the Kind of err, if any, and whether one was found.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
