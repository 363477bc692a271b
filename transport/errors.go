package transport

import "fmt"

// NetworkError wraps a transport-level failure (connection, DNS, TLS) of
// one attempt.
type NetworkError struct {
	message string
	wrapped error
}

func (e *NetworkError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("transport: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("transport: %s", e.message)
}

func (e *NetworkError) Unwrap() error { return e.wrapped }

// Retryable marks network faults as transient.
func (e *NetworkError) Retryable() bool { return true }

// NewNetworkError creates a NetworkError wrapping cause.
func NewNetworkError(message string, cause error) *NetworkError {
	return &NetworkError{message: message, wrapped: cause}
}

// SigningError wraps a failure to authenticate a request before sending.
// It is never retried: signing is deterministic.
type SigningError struct {
	wrapped error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("transport: sign request: %v", e.wrapped)
}

func (e *SigningError) Unwrap() error   { return e.wrapped }
func (e *SigningError) Retryable() bool { return false }

// NewSigningError creates a SigningError wrapping cause.
func NewSigningError(cause error) *SigningError {
	return &SigningError{wrapped: cause}
}
