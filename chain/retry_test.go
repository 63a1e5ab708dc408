package chain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	backoff := []time.Duration{time.Millisecond, time.Millisecond}
	attempts := 0

	err := withRetry(context.Background(), backoff, time.Second, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestWithRetryExhaustsBudgetAndReturnsLastError(t *testing.T) {
	backoff := []time.Duration{time.Millisecond}
	attempts := 0

	err := withRetry(context.Background(), backoff, time.Second, func(context.Context) error {
		attempts++
		return errors.New("persistent failure")
	})

	require.Error(t, err)
	require.Equal(t, "persistent failure", err.Error())
	require.Equal(t, 2, attempts)
}

func TestWithRetryRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := withRetry(ctx, []time.Duration{time.Millisecond}, time.Second, func(context.Context) error {
		return errors.New("always fails")
	})
	require.Error(t, err)
}
