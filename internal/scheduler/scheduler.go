// Package scheduler drives periodic profit accrual. Each tick it walks
// every active stake, credits elapsed weeks, and finalizes matured stakes.
// Stakes are independent: one failing stake is logged and retried on the
// next tick without aborting the rest of the run.
package scheduler

import (
	"context"
	"log"
	"time"
)

type Ledger interface {
	AccrueStake(ctx context.Context, stakeID string) (int, error)
	CompleteStake(ctx context.Context, stakeID string) error
}

type StakeSource interface {
	ListActiveIDs(ctx context.Context) ([]string, error)
}

type Scheduler struct {
	interval time.Duration
	ledger   Ledger
	stakes   StakeSource
}

func New(interval time.Duration, ledger Ledger, stakes StakeSource) *Scheduler {
	return &Scheduler{
		interval: interval,
		ledger:   ledger,
		stakes:   stakes,
	}
}

// Run blocks until ctx is cancelled, performing one pass immediately and
// then one per interval. Cancellation takes effect between stakes; each
// per-stake step is atomic and idempotent, so stopping mid-run never
// corrupts the ledger.
func (s *Scheduler) Run(ctx context.Context) {
	s.RunOnce(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single accrual pass. Also invoked directly by the
// admin API to advance the ledger on demand.
func (s *Scheduler) RunOnce(ctx context.Context) (processed, failed int) {
	ids, err := s.stakes.ListActiveIDs(ctx)
	if err != nil {
		log.Printf("accrual run: listing active stakes: %v", err)
		return 0, 0
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return processed, failed
		}
		weeks, err := s.ledger.AccrueStake(ctx, id)
		if err != nil {
			log.Printf("accrual run: stake %s: %v", id, err)
			failed++
			continue
		}
		if err := s.ledger.CompleteStake(ctx, id); err != nil {
			log.Printf("accrual run: completing stake %s: %v", id, err)
			failed++
			continue
		}
		if weeks > 0 {
			log.Printf("accrual run: stake %s credited %d week(s)", id, weeks)
		}
		processed++
	}
	return processed, failed
}
