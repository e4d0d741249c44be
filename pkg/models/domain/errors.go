package domain

import (
	"errors"
	"fmt"
)

// ErrInsufficientBalance is returned before any network call when an
// account cannot cover the cost of a paid fetch.
var ErrInsufficientBalance = errors.New("insufficient credit balance")

// ValidationError covers bad identifiers and malformed inputs such as
// wrong-shape embedding vectors. Nothing is written when it occurs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// AuthorizationError covers role and balance failures. It always
// occurs before any network call.
type AuthorizationError struct {
	AccountID string
	Reason    string
	Err       error
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("account %s not authorized: %s", e.AccountID, e.Reason)
}

func (e *AuthorizationError) Unwrap() error { return e.Err }

// UpstreamError covers adapter and provider failures, including
// timeouts. No charge is applied when it occurs.
type UpstreamError struct {
	Source string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// DataIntegrityError covers malformed stored or provider data, such as
// a legacy-format raw blob or an invalid insight response. The
// offending fragment is discarded and processing continues.
type DataIntegrityError struct {
	Detail string
	Err    error
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity: %s: %v", e.Detail, e.Err)
}

func (e *DataIntegrityError) Unwrap() error { return e.Err }
