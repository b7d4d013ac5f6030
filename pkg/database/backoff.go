package database

import (
	"context"
	"fmt"
	"time"
)

type backoff struct {
	maxRetries int
	delay      time.Duration
	maxDelay   time.Duration
}

var defaultBackoff = backoff{maxRetries: 5, delay: 500 * time.Millisecond, maxDelay: 5 * time.Second}

func (b backoff) nextDelay(attempt int) time.Duration {
	d := b.delay << attempt
	if d > b.maxDelay || d <= 0 {
		return b.maxDelay
	}
	return d
}

// retry calls fn until it succeeds, the attempts run out or ctx ends.
func (b backoff) retry(ctx context.Context, what string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if attempt >= b.maxRetries {
			return fmt.Errorf("%s failed after retries: %w", what, err)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s canceled: %w", what, ctx.Err())
		case <-time.After(b.nextDelay(attempt)):
		}
	}
}
