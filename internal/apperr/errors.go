// Package apperr defines the error kinds the service layer surfaces to the
// HTTP layer. Services wrap these with fmt.Errorf("...: %w", ...) so handlers
// can map a failure to a status code with errors.Is.
package apperr

import "errors"

var (
	// ErrInsufficientStock: a Decrease would drive stock below zero
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidTransition: illegal invoice lifecycle transition
	ErrInvalidTransition = errors.New("invalid invoice transition")
	// ErrInvalidChangeType: movement direction not Increase or Decrease
	ErrInvalidChangeType = errors.New("invalid change type")
	// ErrNotFound: referenced entity does not exist or is soft-deleted
	ErrNotFound = errors.New("not found")
	// ErrValidation: malformed input (non-positive quantity, bad payload)
	ErrValidation = errors.New("validation failed")
)
