// Package cache defines the client-side cache contract used to short-cut
// point retrieves. Implementations must be safe for concurrent use.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a key doesn't exist or has expired.
	// A cache miss is not a fault; callers fall through to the service.
	ErrNotFound = errors.New("cache: key not found")

	// ErrClosed is returned when using a closed cache.
	ErrClosed = errors.New("cache: closed")
)

// Cache stores opaque byte values under string keys with per-entry TTL.
type Cache interface {
	// Get retrieves a value. Returns ErrNotFound on a miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. A zero TTL stores without
	// expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying resources.
	Close() error
}

// ConfigError reports an invalid cache configuration at construction time.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("cache configuration error: %s: %s", e.Field, e.Message)
}

// NewConfigError creates a ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// ConnectionError reports a failure to reach the cache backend.
type ConnectionError struct {
	Op      string
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cache connection error: %s %s: %v", e.Op, e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// NewConnectionError creates a ConnectionError.
func NewConnectionError(op, address string, err error) *ConnectionError {
	return &ConnectionError{Op: op, Address: address, Err: err}
}
