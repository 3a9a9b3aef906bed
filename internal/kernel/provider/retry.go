package provider

import (
	"context"
	"errors"
	"time"

	"github.com/agentmesh/swarmkernel/internal/backoff"
)

// retryPolicy starts at 2s and doubles, capped at 4 retries, with no
// jitter: the delay sequence is 2s, 4s, 8s, 16s.
var retryPolicy = backoff.BackoffPolicy{
	InitialMs: 2000,
	MaxMs:     16000,
	Factor:    2,
	Jitter:    0,
}

const maxStreamOpenRetries = 4

// openWithRetry retries a stream-open operation on transient failures.
// Retries apply only to opening the stream, never to errors raised while
// consuming it; a non-retryable failure is surfaced immediately.
func openWithRetry[T any](ctx context.Context, isRetryable func(error) bool, open func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= maxStreamOpenRetries+1; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		value, err := open()
		if err == nil {
			return value, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return zero, err
		}
		if attempt > maxStreamOpenRetries {
			break
		}

		delay := backoff.ComputeBackoff(retryPolicy, attempt)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, errors.Join(backoff.ErrMaxAttemptsExhausted, lastErr)
}
