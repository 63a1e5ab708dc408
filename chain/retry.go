package chain

import (
	"context"
	"time"
)

// rpcBackoff is the exponential backoff schedule for ordinary RPC calls per
// spec.md §4.1: up to 4 attempts total, waiting 200/400/800ms between them,
// 10s hard timeout per attempt.
var rpcBackoff = []time.Duration{
	200 * time.Millisecond,
	400 * time.Millisecond,
	800 * time.Millisecond,
}

const rpcAttemptTimeout = 10 * time.Second

// healthBackoff is the shorter schedule used only by GetHealth: up to 2
// retries (3 attempts total), 500ms then 1000ms, 5s timeout per attempt.
var healthBackoff = []time.Duration{
	500 * time.Millisecond,
	1000 * time.Millisecond,
}

const healthAttemptTimeout = 5 * time.Second

// withRetry runs fn up to len(backoff)+1 times, sleeping backoff[i] between
// attempt i and i+1, each attempt bounded by attemptTimeout. It returns the
// last error if every attempt fails. When reached through call (client.go),
// fn and the retry sleeps run on a dedicated goroutine rather than the
// caller's; GetHealth calls withRetry directly on the caller's goroutine.
func withRetry(
	ctx context.Context,
	backoff []time.Duration,
	attemptTimeout time.Duration,
	fn func(context.Context) error,
) error {

	var lastErr error
	attempts := len(backoff) + 1

	for attempt := 0; attempt < attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		err := fn(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}

		select {
		case <-time.After(backoff[attempt]):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
