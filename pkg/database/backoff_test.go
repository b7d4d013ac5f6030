package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBackoffNextDelay(t *testing.T) {
	b := backoff{maxRetries: 3, delay: 100 * time.Millisecond, maxDelay: 300 * time.Millisecond}
	require.Equal(t, 100*time.Millisecond, b.nextDelay(0))
	require.Equal(t, 200*time.Millisecond, b.nextDelay(1))
	require.Equal(t, 300*time.Millisecond, b.nextDelay(2))
	require.Equal(t, 300*time.Millisecond, b.nextDelay(6))
}

func TestBackoffRetry(t *testing.T) {
	b := backoff{maxRetries: 2, delay: time.Millisecond, maxDelay: time.Millisecond}

	calls := 0
	err := b.retry(context.Background(), "op", func() error {
		calls++
		if calls < 2 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)

	calls = 0
	boom := errors.New("boom")
	err = b.retry(context.Background(), "op", func() error { calls++; return boom })
	require.ErrorIs(t, err, boom)
	require.Equal(t, 3, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = b.retry(ctx, "op", func() error { return boom })
	require.ErrorIs(t, err, context.Canceled)
}
