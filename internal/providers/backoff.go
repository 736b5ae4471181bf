package providers

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Backoff retries rate-limited calls with exponentially growing delays
type Backoff struct {
	Initial    time.Duration
	Max        time.Duration
	MaxRetries int

	// Sleep waits between attempts; nil uses a context-aware timer
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultBackoff starts at one second and caps at one minute
func DefaultBackoff() Backoff {
	return Backoff{
		Initial:    time.Second,
		Max:        time.Minute,
		MaxRetries: 10,
	}
}

// Do runs fn until it succeeds, fails with an error other than ErrRateLimited,
// or MaxRetries retries have been spent.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	sleep := b.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	delay := b.Initial
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !errors.Is(err, ErrRateLimited) || attempt >= b.MaxRetries {
			return err
		}

		slog.Warn("Rate limited, backing off", "attempt", attempt+1, "delay", delay)
		if err := sleep(ctx, delay); err != nil {
			return err
		}

		delay *= 2
		if b.Max > 0 && delay > b.Max {
			delay = b.Max
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
