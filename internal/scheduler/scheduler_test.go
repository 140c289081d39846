package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubLedger struct {
	accrueFn   func(ctx context.Context, stakeID string) (int, error)
	completeFn func(ctx context.Context, stakeID string) error
}

func (s stubLedger) AccrueStake(ctx context.Context, stakeID string) (int, error) {
	if s.accrueFn == nil {
		return 0, nil
	}
	return s.accrueFn(ctx, stakeID)
}

func (s stubLedger) CompleteStake(ctx context.Context, stakeID string) error {
	if s.completeFn == nil {
		return nil
	}
	return s.completeFn(ctx, stakeID)
}

type stubSource struct {
	ids []string
	err error
}

func (s stubSource) ListActiveIDs(context.Context) ([]string, error) {
	return s.ids, s.err
}

func TestRunOnceProcessesAllStakes(t *testing.T) {
	var accrued, completed []string
	sched := New(time.Hour, stubLedger{
		accrueFn: func(_ context.Context, stakeID string) (int, error) {
			accrued = append(accrued, stakeID)
			return 1, nil
		},
		completeFn: func(_ context.Context, stakeID string) error {
			completed = append(completed, stakeID)
			return nil
		},
	}, stubSource{ids: []string{"stake-1", "stake-2", "stake-3"}})

	processed, failed := sched.RunOnce(context.Background())
	if processed != 3 || failed != 0 {
		t.Fatalf("expected 3 processed 0 failed, got %d/%d", processed, failed)
	}
	if len(accrued) != 3 || len(completed) != 3 {
		t.Fatalf("expected all stakes touched, got %d accrued %d completed", len(accrued), len(completed))
	}
}

func TestRunOnceIsolatesFailures(t *testing.T) {
	var completed []string
	sched := New(time.Hour, stubLedger{
		accrueFn: func(_ context.Context, stakeID string) (int, error) {
			if stakeID == "stake-2" {
				return 0, errors.New("boom")
			}
			return 0, nil
		},
		completeFn: func(_ context.Context, stakeID string) error {
			completed = append(completed, stakeID)
			return nil
		},
	}, stubSource{ids: []string{"stake-1", "stake-2", "stake-3"}})

	processed, failed := sched.RunOnce(context.Background())
	if processed != 2 || failed != 1 {
		t.Fatalf("expected 2 processed 1 failed, got %d/%d", processed, failed)
	}
	// a failed accrual skips completion for that stake only
	if len(completed) != 2 {
		t.Fatalf("expected 2 completions, got %d", len(completed))
	}
}

func TestRunOnceListError(t *testing.T) {
	sched := New(time.Hour, stubLedger{}, stubSource{err: errors.New("db down")})
	processed, failed := sched.RunOnce(context.Background())
	if processed != 0 || failed != 0 {
		t.Fatalf("expected empty run, got %d/%d", processed, failed)
	}
}

func TestRunOnceStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var touched int
	sched := New(time.Hour, stubLedger{
		accrueFn: func(context.Context, string) (int, error) {
			touched++
			cancel()
			return 0, nil
		},
	}, stubSource{ids: []string{"stake-1", "stake-2", "stake-3"}})

	sched.RunOnce(ctx)
	if touched != 1 {
		t.Fatalf("expected cancellation after first stake, got %d", touched)
	}
}

func TestRunExitsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sched := New(10*time.Millisecond, stubLedger{}, stubSource{})
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("scheduler did not stop on cancel")
	}
}
