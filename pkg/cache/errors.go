package cache

import "errors"

// Sentinel errors for caching operations.
var (
	// ErrInvalidURL is returned when a Redis URL cannot be parsed.
	ErrInvalidURL = errors.New("invalid redis url")

	// ErrUnavailable is returned when the cache backend cannot be reached.
	ErrUnavailable = errors.New("cache unavailable")
)
