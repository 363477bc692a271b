package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/stratostore/go-tables/logger"
	"github.com/stratostore/go-tables/trace"
)

const (
	// DefaultTimeout bounds a single attempt including body download.
	DefaultTimeout = 30 * time.Second

	tracerName = "github.com/stratostore/go-tables/transport"
)

// Engine executes request specifications against the service with signing,
// retries and endpoint rotation. It is safe for concurrent use.
type Engine struct {
	httpClient *http.Client
	endpoints  Endpoints
	signer     Signer
	log        logger.Logger
	tracer     oteltrace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) { e.httpClient = c }
}

// WithLogger sets the engine logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine creates an execution engine for the given endpoints and signer.
// A nil signer disables authentication.
func NewEngine(endpoints Endpoints, signer Signer, opts ...Option) *Engine {
	if signer == nil {
		signer = AnonymousSigner{}
	}
	e := &Engine{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		endpoints:  endpoints,
		signer:     signer,
		log:        logger.Nop(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run drives spec through the retry policy until a terminal outcome. The
// returned value is whatever the spec's callbacks produced for the final
// attempt.
//
// Classification contract: an error returned by PreProcess stops the loop
// immediately when it reports Retryable() == false; any other error is
// subject to the policy. PostProcess errors are always terminal, since the
// attempt itself already succeeded.
func (e *Engine) Run(ctx context.Context, spec *RequestSpec, policy RetryPolicy, mode LocationMode) (any, error) {
	if policy == nil {
		policy = DefaultRetry()
	}

	requestID := trace.EnsureClientRequestID(ctx)
	ctx, span := e.tracer.Start(ctx, "tables."+spec.Method,
		oteltrace.WithSpanKind(oteltrace.SpanKindClient),
		oteltrace.WithAttributes(
			attribute.String("http.request.method", spec.Method),
			attribute.String("tables.resource", spec.Resource),
			attribute.String("tables.client_request_id", requestID),
		))
	defer span.End()

	for attempt := 0; ; attempt++ {
		resp, err := e.attempt(ctx, spec, mode, attempt, requestID)

		var result any
		if err == nil {
			result, err = spec.PreProcess(resp)
			if err == nil && spec.PostProcess != nil {
				// Terminal either way: the service already accepted the
				// request, only local parsing can fail here.
				result, err = spec.PostProcess(resp, result)
				if err != nil {
					span.SetStatus(codes.Error, err.Error())
					return nil, err
				}
			}
		}

		if err == nil {
			span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
			span.SetStatus(codes.Ok, "")
			return result, nil
		}

		statusCode := 0
		if resp != nil {
			statusCode = resp.StatusCode
		}
		span.AddEvent("attempt failed", oteltrace.WithAttributes(
			attribute.Int("tables.attempt", attempt),
			attribute.Int("http.response.status_code", statusCode),
		))

		delay, retry := policy.ShouldRetry(attempt, statusCode, err)
		if !retry {
			span.SetStatus(codes.Error, err.Error())
			e.log.Warn().
				Err(err).
				Str("method", spec.Method).
				Str("resource", spec.Resource).
				Int("attempts", attempt+1).
				Msg("operation failed")
			return nil, err
		}

		e.log.Debug().
			Err(err).
			Str("method", spec.Method).
			Str("resource", spec.Resource).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("retrying attempt")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			span.SetStatus(codes.Error, ctx.Err().Error())
			return nil, ctx.Err()
		}
	}
}

// attempt issues spec once against the location chosen for this attempt
// and returns the fully buffered response.
func (e *Engine) attempt(ctx context.Context, spec *RequestSpec, mode LocationMode, attempt int, requestID string) (*Response, error) {
	loc, base, err := e.endpoints.forAttempt(mode, attempt)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if spec.Body != nil {
		// Fresh reader over the shared immutable buffer per attempt.
		body = bytes.NewReader(spec.Body)
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, base+spec.Resource, body)
	if err != nil {
		return nil, NewNetworkError("build request", err)
	}
	if spec.Body != nil {
		req.ContentLength = int64(len(spec.Body))
	}
	for k, v := range spec.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set(trace.HeaderClientRequestID, requestID)

	if err := e.signer.Sign(req); err != nil {
		return nil, NewSigningError(err)
	}

	start := time.Now()
	httpResp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, NewNetworkError("request execution failed", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewNetworkError("read response body", err)
	}

	e.log.Debug().
		Str("method", spec.Method).
		Str("resource", spec.Resource).
		Str("location", loc.String()).
		Int("status", httpResp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("attempt complete")

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}, nil
}
