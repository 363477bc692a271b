// Package trace carries client request identifiers through context so that
// every attempt of a storage operation can be correlated with the service's
// server-side request logs.
package trace

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is the type for context keys to avoid collisions.
type contextKey string

const (
	// clientRequestIDKey is the context key for the client request id.
	clientRequestIDKey contextKey = "client_request_id"

	// HeaderClientRequestID is the header echoed back by the service for
	// request correlation.
	HeaderClientRequestID = "x-ms-client-request-id"

	// HeaderRequestID is the server-assigned request id header.
	HeaderRequestID = "x-ms-request-id"
)

// WithClientRequestID adds a client request id to the context.
func WithClientRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientRequestIDKey, id)
}

// ClientRequestIDFromContext returns the client request id from context if
// present.
func ClientRequestIDFromContext(ctx context.Context) (string, bool) {
	if id, ok := ctx.Value(clientRequestIDKey).(string); ok && id != "" {
		return id, true
	}
	return "", false
}

// EnsureClientRequestID returns an existing client request id from context
// or generates a new one.
func EnsureClientRequestID(ctx context.Context) string {
	if id, ok := ClientRequestIDFromContext(ctx); ok {
		return id
	}
	return uuid.New().String()
}
