// Package retry re-runs whole structured calls for callers that opt in.
// Components never retry on their own; a retried optimization is several
// independent calls, each with its own model invocation.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/leofalp/nextpress/core/structured"
	"github.com/leofalp/nextpress/providers/ai"
)

// ErrRetryExhausted is wrapped together with the last error once every
// attempt has failed.
var ErrRetryExhausted = errors.New("retries exhausted")

// Policy holds the tuning parameters of Do. Zero durations and factors take
// the defaults below; MaxRetries is used as given, so the zero Policy runs fn
// exactly once.
type Policy struct {
	// MaxRetries is the number of extra attempts after the first failure.
	MaxRetries int

	// InitialBackoff is the wait before the first retry. Default: 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps the computed backoff. Default: 30s.
	MaxBackoff time.Duration

	// BackoffFactor is the growth multiplier per retry. Default: 2.0.
	BackoffFactor float64

	// JitterFraction adds up to JitterFraction*backoff of random delay.
	// Default: 0.1.
	JitterFraction float64

	// Retryable decides whether err is worth another attempt.
	// Default: DefaultRetryable.
	Retryable func(error) bool
}

// DefaultRetryable retries invocation failures only. An invocation failure
// caused by a provider answering with a permanent HTTP status (4xx other
// than 429) is not retried. Validation and model output failures never are:
// the same input would fail the same way.
func DefaultRetryable(err error) bool {
	if !errors.Is(err, structured.ErrInvocation) {
		return false
	}
	var providerErr *ai.ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Temporary()
	}
	return true
}

func (p Policy) withDefaults() Policy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = time.Second
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = 30 * time.Second
	}
	if p.BackoffFactor <= 0 {
		p.BackoffFactor = 2.0
	}
	if p.JitterFraction <= 0 {
		p.JitterFraction = 0.1
	}
	if p.Retryable == nil {
		p.Retryable = DefaultRetryable
	}
	return p
}

// Backoff returns the wait before retry number attempt (0-indexed):
// min(InitialBackoff * BackoffFactor^attempt, MaxBackoff) plus jitter.
func (p Policy) Backoff(attempt int) time.Duration {
	p = p.withDefaults()

	base := float64(p.InitialBackoff) * math.Pow(p.BackoffFactor, float64(attempt))
	if base > float64(p.MaxBackoff) {
		base = float64(p.MaxBackoff)
	}

	jitter := base * p.JitterFraction * rand.Float64() //nolint:gosec // non-cryptographic jitter
	return time.Duration(base + jitter)
}

// Do calls fn until it succeeds, returns a non-retryable error, or runs out
// of retries. Cancelling ctx stops the wait between attempts and returns the
// last error seen.
func Do[T any](ctx context.Context, policy Policy, fn func(context.Context) (T, error)) (T, error) {
	policy = policy.withDefaults()

	var (
		zero    T
		lastErr error
	)

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(policy.Backoff(attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, lastErr
			case <-timer.C:
			}
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !policy.Retryable(err) {
			return zero, err
		}
	}

	if policy.MaxRetries == 0 {
		return zero, lastErr
	}
	return zero, fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, policy.MaxRetries, lastErr)
}
