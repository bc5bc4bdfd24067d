package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

type mockExpiryStore struct {
	demoteFn func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockExpiryStore) DemoteExpired(ctx context.Context, now time.Time) (int64, error) {
	return m.demoteFn(ctx, now)
}

func TestExpirySweeper_RunOnce_Idempotent(t *testing.T) {
	// Simulate a store with three expired active links; the first sweep
	// demotes them, the second finds nothing left to demote.
	remaining := int64(3)
	store := &mockExpiryStore{
		demoteFn: func(ctx context.Context, now time.Time) (int64, error) {
			demoted := remaining
			remaining = 0
			return demoted, nil
		},
	}

	sweeper := NewExpirySweeper(nil, store, time.Minute)

	if got := sweeper.RunOnce(context.Background()); got != 3 {
		t.Fatalf("first sweep demoted %d links, want 3", got)
	}
	if got := sweeper.RunOnce(context.Background()); got != 0 {
		t.Fatalf("second sweep demoted %d links, want 0", got)
	}
}

func TestExpirySweeper_RunOnce_SwallowsErrors(t *testing.T) {
	store := &mockExpiryStore{
		demoteFn: func(ctx context.Context, now time.Time) (int64, error) {
			return 0, errors.New("store unavailable")
		},
	}

	sweeper := NewExpirySweeper(nil, store, time.Minute)
	if got := sweeper.RunOnce(context.Background()); got != 0 {
		t.Fatalf("failed sweep reported %d demotions, want 0", got)
	}
}

func TestExpirySweeper_TickerKeepsRunningAfterFailure(t *testing.T) {
	calls := make(chan struct{}, 8)
	fail := true
	store := &mockExpiryStore{
		demoteFn: func(ctx context.Context, now time.Time) (int64, error) {
			calls <- struct{}{}
			if fail {
				fail = false
				return 0, errors.New("transient failure")
			}
			return 0, nil
		},
	}

	sweeper := NewExpirySweeper(nil, store, 10*time.Millisecond)
	sweeper.Start()
	defer sweeper.Stop()

	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(time.Second):
			t.Fatalf("sweep %d never ran", i+1)
		}
	}
}
