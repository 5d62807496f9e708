// Package common defines the error taxonomy shared by the store, the services
// and the HTTP layer. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Store-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// Auth errors.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnauthorized    = errors.New("unauthorized")

	// Malformed input, rejected before it reaches the store.
	ErrValidation = errors.New("validation failed")
)

// EntityError attaches the name of the entity involved to one of the
// sentinel errors above.
type EntityError struct {
	Entity string
	Err    error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s %s", e.Entity, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// NotFound reports that the named entity does not exist.
func NotFound(entity string) error {
	return &EntityError{Entity: entity, Err: ErrNotFound}
}

// Conflict reports a uniqueness violation on the named entity.
func Conflict(entity string) error {
	return &EntityError{Entity: entity, Err: ErrConflict}
}

// Validation wraps a human readable reason in ErrValidation.
func Validation(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}
