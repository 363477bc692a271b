package table

import (
	"errors"
	"fmt"

	"github.com/stratostore/go-tables/odata"
	"github.com/stratostore/go-tables/trace"
	"github.com/stratostore/go-tables/transport"
)

// ErrUnknownOperation reports an operation kind outside the closed set.
// Seeing it means a programming error, never a service failure.
var ErrUnknownOperation = errors.New("table: unknown operation kind")

// PreconditionError reports a local invariant violation detected before any
// request is sent: a missing key, a missing entity tag, an empty table
// name. It is never retried.
type PreconditionError struct {
	Kind    OperationKind
	Message string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("table: %s: %s", e.Kind, e.Message)
}

// Retryable marks precondition failures as terminal for the retry engine.
func (e *PreconditionError) Retryable() bool { return false }

func newPrecondition(kind OperationKind, message string) *PreconditionError {
	return &PreconditionError{Kind: kind, Message: message}
}

// ServiceError is the single structured error type for every remote
// failure. Callers branch on StatusCode and Fatal, never on transport
// details.
//
// Fatal true means the failure looks transient (server fault, throttling)
// and the retry engine may repeat the attempt under its policy. Fatal false
// marks a business outcome (conflict, not-found on a conditional write)
// that no retry can change.
type ServiceError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
	Fatal      bool
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("table: service returned %d", e.StatusCode)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.RequestID != "" {
		msg += " (request id " + e.RequestID + ")"
	}
	return msg
}

// Retryable reports whether the retry engine may repeat the attempt.
func (e *ServiceError) Retryable() bool { return e.Fatal }

var _ transport.Retryable = (*ServiceError)(nil)

// newServiceError classifies one failed attempt, extracting the structured
// error payload and the server request id from the response.
func newServiceError(fatal bool, resp *transport.Response) *ServiceError {
	parsed := odata.ParseErrorBody(resp.Body)
	return &ServiceError{
		StatusCode: resp.StatusCode,
		Code:       parsed.Code,
		Message:    parsed.Message,
		RequestID:  resp.Header.Get(trace.HeaderRequestID),
		Fatal:      fatal,
	}
}

// EncodingError wraps a payload serialization failure. The request was
// never sent.
type EncodingError struct {
	Kind    OperationKind
	wrapped error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("table: %s: encode entity: %v", e.Kind, e.wrapped)
}

func (e *EncodingError) Unwrap() error   { return e.wrapped }
func (e *EncodingError) Retryable() bool { return false }
