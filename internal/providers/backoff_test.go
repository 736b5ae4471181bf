package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestBackoffRetriesRateLimits(t *testing.T) {
	var delays []time.Duration
	b := Backoff{
		Initial:    time.Second,
		Max:        3 * time.Second,
		MaxRetries: 5,
		Sleep: func(ctx context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		},
	}

	calls := 0
	err := b.Do(context.Background(), func() error {
		calls++
		if calls < 4 {
			return fmt.Errorf("status 429: %w", ErrRateLimited)
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if calls != 4 {
		t.Errorf("Expected 4 calls, got %d", calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}
	if diff := cmp.Diff(want, delays); diff != "" {
		t.Errorf("Delay mismatch (-want +got):\n%s", diff)
	}
}

func TestBackoffGivesUp(t *testing.T) {
	b := Backoff{
		Initial:    time.Millisecond,
		MaxRetries: 2,
		Sleep:      func(ctx context.Context, d time.Duration) error { return nil },
	}

	calls := 0
	err := b.Do(context.Background(), func() error {
		calls++
		return ErrRateLimited
	})

	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("Expected ErrRateLimited, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestBackoffDoesNotRetryOtherErrors(t *testing.T) {
	b := DefaultBackoff()
	boom := errors.New("boom")

	calls := 0
	err := b.Do(context.Background(), func() error {
		calls++
		return boom
	})

	if !errors.Is(err, boom) || calls != 1 {
		t.Errorf("Expected a single failing call, got %d calls and %v", calls, err)
	}
}

func TestBackoffHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := Backoff{Initial: time.Hour, MaxRetries: 3}
	err := b.Do(ctx, func() error { return ErrRateLimited })

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
