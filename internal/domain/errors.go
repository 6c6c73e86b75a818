package domain

import "errors"

var (
	// ErrInvalidInput marks malformed call arguments. Never silently coerced.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a missing entity.
	ErrNotFound = errors.New("not found")
	// ErrStorageUnavailable wraps failures of a storage backend. Callers own retries.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
