package pipeline

import (
	"context"
	"time"
)

// retryPolicy bounds retries for transient provider failures. It is decoupled
// from the HTTP call so it can be exercised with a fake failing-then-
// succeeding completer.
type retryPolicy struct {
	maxAttempts int
	delay       time.Duration
	// retryable decides whether a failed attempt may be repeated. A nil
	// predicate disables retries entirely.
	retryable func(error) bool
}

// do runs fn up to maxAttempts times, sleeping delay between attempts while
// retryable(err) holds. Context cancellation aborts the inter-attempt wait.
// The last error is returned once attempts are exhausted.
func (p retryPolicy) do(ctx context.Context, fn func(context.Context) error) error {
	attempts := p.maxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			providerRetriesTotal.Inc()
			select {
			case <-time.After(p.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err = fn(ctx)
		if err == nil || p.retryable == nil || !p.retryable(err) {
			return err
		}
	}
	return err
}
