package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed caller input. It is rejected before any
	// query reaches the store.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned by lookups by id when no record exists.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCursor is returned when a pagination cursor cannot be decoded
	// or was issued for a different sort order.
	ErrInvalidCursor = errors.New("invalid cursor")
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field string
	Err   error
}

func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

// Validationf builds a ValidationError from a formatted message.
func Validationf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Err: fmt.Errorf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}

// StoreError wraps a persistence failure so callers can tell it apart from
// bad input.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// WrapStore wraps err as a StoreError unless it is nil.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
