package store

import (
	"context"
	"time"
)

type AccrualStore struct {
	db DB
}

type AccrualRun struct {
	StakeID     string    `db:"stake_id"`
	WeekIndex   int       `db:"week_index"`
	AmountMinor int64     `db:"amount_minor"`
	CreditedAt  time.Time `db:"credited_at"`
}

func NewAccrualStore(db DB) *AccrualStore {
	return &AccrualStore{db: db}
}

// Insert records one weekly accrual. The (stake_id, week_index) primary
// key makes re-runs harmless: a duplicate insert affects zero rows and the
// caller skips the credit.
func (s *AccrualStore) Insert(ctx context.Context, tx Execer, stakeID string, weekIndex int, amountMinor int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO accrual_runs (stake_id, week_index, amount_minor)
		VALUES ($1, $2, $3)
		ON CONFLICT (stake_id, week_index) DO NOTHING
	`, stakeID, weekIndex, amountMinor)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *AccrualStore) LastWeekIndex(ctx context.Context, tx Getter, stakeID string) (int, error) {
	var week int
	err := tx.GetContext(ctx, &week, `
		SELECT COALESCE(MAX(week_index), 0)
		FROM accrual_runs
		WHERE stake_id = $1
	`, stakeID)
	return week, err
}

func (s *AccrualStore) ListByStake(ctx context.Context, stakeID string) ([]AccrualRun, error) {
	var rows []AccrualRun
	err := s.db.SelectContext(ctx, &rows, `
		SELECT stake_id, week_index, amount_minor, credited_at
		FROM accrual_runs
		WHERE stake_id = $1
		ORDER BY week_index ASC
	`, stakeID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
