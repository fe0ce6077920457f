package store

import "errors"

// Common errors returned by VerdictStore implementations.
var (
	// ErrNotFound is returned when a requested verdict doesn't exist.
	ErrNotFound = errors.New("verdict not found")

	// ErrStoreDisabled is returned when the store is not enabled.
	ErrStoreDisabled = errors.New("store is disabled")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
