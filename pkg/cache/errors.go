package cache

import "errors"

var (
	// ErrNotFound marks a key that is absent or already expired.
	ErrNotFound = errors.New("cache: entry not found")

	// ErrClosed marks a write against a closed cache.
	ErrClosed = errors.New("cache: closed")

	// ErrMarshal wraps value serialization failures.
	ErrMarshal = errors.New("cache: failed to marshal value")

	// ErrUnmarshal wraps value deserialization failures.
	ErrUnmarshal = errors.New("cache: failed to unmarshal value")
)
