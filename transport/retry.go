package transport

import (
	crand "crypto/rand"
	"errors"
	"math/big"
	"time"
)

// RetryPolicy decides whether a failed attempt should be repeated and after
// what delay. attempt is zero-based and counts the attempt that just
// failed.
type RetryPolicy interface {
	ShouldRetry(attempt int, statusCode int, err error) (time.Duration, bool)
}

// NoRetry performs exactly one attempt.
type NoRetry struct{}

func (NoRetry) ShouldRetry(int, int, error) (time.Duration, bool) {
	return 0, false
}

// LinearRetry waits a fixed delay between attempts.
type LinearRetry struct {
	Delay       time.Duration
	MaxAttempts int
}

func (p LinearRetry) ShouldRetry(attempt, statusCode int, err error) (time.Duration, bool) {
	if !attemptEligible(attempt, p.MaxAttempts, statusCode, err) {
		return 0, false
	}
	return p.Delay, true
}

// ExponentialRetry doubles a base delay per attempt with full jitter,
// capped at MaxDelay (30s when zero).
type ExponentialRetry struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
}

func (p ExponentialRetry) ShouldRetry(attempt, statusCode int, err error) (time.Duration, bool) {
	if !attemptEligible(attempt, p.MaxAttempts, statusCode, err) {
		return 0, false
	}
	return backoffDelay(p.BaseDelay, p.MaxDelay, attempt), true
}

// DefaultRetry is the policy applied when the caller supplies none.
func DefaultRetry() RetryPolicy {
	return ExponentialRetry{BaseDelay: 500 * time.Millisecond, MaxAttempts: 3}
}

// attemptEligible applies the gating shared by all policies: attempt
// budget, error classification and status class. 4xx statuses reflect a
// genuine request or state problem and never heal on retry; the exceptions
// (404/409 on conditional writes) arrive here as non-retryable classified
// errors anyway.
func attemptEligible(attempt, maxAttempts, statusCode int, err error) bool {
	if attempt >= maxAttempts {
		return false
	}
	var r Retryable
	if errors.As(err, &r) && !r.Retryable() {
		return false
	}
	if statusCode >= 400 && statusCode < 500 && statusCode != 408 && statusCode != 429 {
		return false
	}
	return true
}

// backoffDelay computes base * 2^attempt with full jitter.
func backoffDelay(base, maxDelay time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}
	if attempt > 20 {
		attempt = 20
	}
	d := base * time.Duration(1<<attempt)
	if d > maxDelay || d <= 0 {
		d = maxDelay
	}
	n, err := crand.Int(crand.Reader, big.NewInt(int64(d)))
	if err != nil {
		return d
	}
	return time.Duration(n.Int64())
}
