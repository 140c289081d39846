package store

import (
	"context"
	"time"
)

const (
	StakeStatusActive    = "active"
	StakeStatusCompleted = "completed"
)

type StakeStore struct {
	db DB
}

type Stake struct {
	ID                  string    `db:"id"`
	OwnerID             string    `db:"owner_id"`
	PackageType         string    `db:"package_type"`
	PrincipalMinor      int64     `db:"principal_minor"`
	WeeklyReturnPercent string    `db:"weekly_return_percent"`
	LockPeriodMonths    int       `db:"lock_period_months"`
	StartDate           time.Time `db:"start_date"`
	EndDate             time.Time `db:"end_date"`
	ProfitsMinor        int64     `db:"profits_minor"`
	Status              string    `db:"status"`
	CreatedAt           any       `db:"created_at"`
}

type StakeInput struct {
	ID                  string
	OwnerID             string
	PackageType         string
	PrincipalMinor      int64
	WeeklyReturnPercent string
	LockPeriodMonths    int
	StartDate           time.Time
	EndDate             time.Time
}

func NewStakeStore(db DB) *StakeStore {
	return &StakeStore{db: db}
}

func (s *StakeStore) Create(ctx context.Context, tx Execer, input StakeInput) error {
	query := `
		INSERT INTO stakes (id, owner_id, package_type, principal_minor, weekly_return_percent, lock_period_months, start_date, end_date, profits_minor, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 'active')
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.OwnerID, input.PackageType, input.PrincipalMinor,
		input.WeeklyReturnPercent, input.LockPeriodMonths, input.StartDate, input.EndDate,
	)
	return err
}

func (s *StakeStore) GetByID(ctx context.Context, stakeID string) (Stake, error) {
	var row Stake
	err := s.db.GetContext(ctx, &row, `
		SELECT id, owner_id, package_type, principal_minor, weekly_return_percent,
		       lock_period_months, start_date, end_date, profits_minor, status, created_at
		FROM stakes
		WHERE id = $1
	`, stakeID)
	if err != nil {
		return Stake{}, err
	}
	return row, nil
}

func (s *StakeStore) GetForUpdate(ctx context.Context, tx Getter, stakeID string) (Stake, error) {
	var row Stake
	err := tx.GetContext(ctx, &row, `
		SELECT id, owner_id, package_type, principal_minor, weekly_return_percent,
		       lock_period_months, start_date, end_date, profits_minor, status
		FROM stakes
		WHERE id = $1
		FOR UPDATE
	`, stakeID)
	if err != nil {
		return Stake{}, err
	}
	return row, nil
}

func (s *StakeStore) ListByOwner(ctx context.Context, ownerID string) ([]Stake, error) {
	var rows []Stake
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, owner_id, package_type, principal_minor, weekly_return_percent,
		       lock_period_months, start_date, end_date, profits_minor, status, created_at
		FROM stakes
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListActiveIDs feeds the accrual scheduler. IDs only, oldest first, so a
// long run touches mature stakes before fresh ones.
func (s *StakeStore) ListActiveIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, `
		SELECT id
		FROM stakes
		WHERE status = 'active'
		ORDER BY start_date ASC
	`)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// AddProfits increments the accrued profit of an active stake. Completed
// stakes are frozen and never match.
func (s *StakeStore) AddProfits(ctx context.Context, tx Execer, stakeID string, deltaMinor int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE stakes
		SET profits_minor = profits_minor + $1
		WHERE id = $2 AND status = 'active'
	`, deltaMinor, stakeID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkCompleted flips an active stake to completed. Returns rows affected
// so callers can tell a first completion from a repeat (idempotent no-op).
func (s *StakeStore) MarkCompleted(ctx context.Context, tx Execer, stakeID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE stakes
		SET status = 'completed', completed_at = NOW()
		WHERE id = $1 AND status = 'active'
	`, stakeID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *StakeStore) ListAll(ctx context.Context, limit, offset int) ([]Stake, error) {
	var rows []Stake
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, owner_id, package_type, principal_minor, weekly_return_percent,
		       lock_period_months, start_date, end_date, profits_minor, status, created_at
		FROM stakes
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
