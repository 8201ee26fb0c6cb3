package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by mutations whose target id does not exist.
// Plain lookups return a nil record instead; callers probing for existence
// should not have to handle an error.
var ErrNotFound = errors.New("not found")

// ValidationError reports a constraint violation in caller-supplied input
// (missing title, invalid subtype, out-of-range rating). It is surfaced to
// the user for correction and never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StoreError wraps an underlying driver or I/O failure. Not recoverable
// locally; it propagates to the caller for user-visible messaging.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
