// Package transport drives replayable HTTP request attempts against the
// table service: per-attempt request construction, signing, retry policy
// evaluation and primary/secondary endpoint rotation.
package transport

import (
	"net/http"
)

// RequestSpec is one fully prepared, replayable unit of work. The engine
// may issue it several times; everything in it is immutable once built. In
// particular Body is the pre-encoded payload buffer: the engine wraps it in
// a fresh reader per attempt and never re-invokes the encoder.
type RequestSpec struct {
	// Method is the HTTP method, including the non-standard MERGE verb.
	Method string

	// Resource is the path addressing the target, relative to the service
	// endpoint, e.g. "/orders(PartitionKey='a',RowKey='1')".
	Resource string

	// Headers are operation-specific headers (Accept, Content-Type,
	// If-Match, Prefer). The engine adds correlation and signing headers.
	Headers map[string]string

	// Body is the request payload, nil when the operation sends none.
	Body []byte

	// PreProcess classifies the outcome of one attempt from status code and
	// headers alone. It must not interpret Response.Body beyond error
	// payload extraction; successful-body parsing belongs in PostProcess.
	// A returned error stops or continues the retry loop depending on its
	// classification (see Retryable).
	PreProcess func(resp *Response) (any, error)

	// PostProcess runs once, after PreProcess accepted the final attempt,
	// and may parse Response.Body into the result. Optional.
	PostProcess func(resp *Response, result any) (any, error)
}

// Response is the observable outcome of a single attempt. Body is fully
// buffered by the engine before the callbacks run.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ETag returns the entity tag header of the response, if any.
func (r *Response) ETag() string {
	return r.Header.Get("ETag")
}

// RequestID returns the server-assigned request id, if any.
func (r *Response) RequestID() string {
	return r.Header.Get("x-ms-request-id")
}

// Signer authenticates one outgoing request, typically by adding date and
// authorization headers derived from the request line.
type Signer interface {
	Sign(req *http.Request) error
}

// AnonymousSigner performs no signing. Useful against local emulators with
// authentication disabled.
type AnonymousSigner struct{}

func (AnonymousSigner) Sign(*http.Request) error { return nil }

// Retryable is implemented by errors that know whether another attempt is
// worthwhile. Errors that do not implement it are treated as retryable
// transport faults.
type Retryable interface {
	Retryable() bool
}
