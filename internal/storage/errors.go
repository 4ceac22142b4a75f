package storage

import "errors"

// Storage errors shared by all backends.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when an insert collides with an existing
	// unique key. For alerts this is the concurrency-control signal, not a
	// failure: the caller treats it as "this alert already exists".
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
