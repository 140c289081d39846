package store

import "context"

// PackageStore persists the live staking catalog. Rows are configuration:
// changing a tier never touches stakes already opened against it, because
// each stake carries its own frozen rate and lock period.
type PackageStore struct {
	db DB
}

type StakePackage struct {
	Tier                string `db:"tier"`
	TierAmountMinor     int64  `db:"tier_amount_minor"`
	WeeklyReturnPercent string `db:"weekly_return_percent"`
	LockPeriodMonths    int    `db:"lock_period_months"`
	IsActive            bool   `db:"is_active"`
	UpdatedAt           any    `db:"updated_at"`
}

func NewPackageStore(db DB) *PackageStore {
	return &PackageStore{db: db}
}

func (s *PackageStore) List(ctx context.Context) ([]StakePackage, error) {
	var rows []StakePackage
	err := s.db.SelectContext(ctx, &rows, `
		SELECT tier, tier_amount_minor, weekly_return_percent, lock_period_months, is_active, updated_at
		FROM stake_packages
		WHERE is_active = TRUE
		ORDER BY tier_amount_minor ASC
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *PackageStore) GetByTier(ctx context.Context, tier string) (StakePackage, error) {
	var row StakePackage
	err := s.db.GetContext(ctx, &row, `
		SELECT tier, tier_amount_minor, weekly_return_percent, lock_period_months, is_active, updated_at
		FROM stake_packages
		WHERE tier = $1 AND is_active = TRUE
	`, tier)
	if err != nil {
		return StakePackage{}, err
	}
	return row, nil
}

func (s *PackageStore) SetTier(ctx context.Context, tx Execer, tier string, tierAmountMinor int64, weeklyReturnPercent string, lockPeriodMonths int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO stake_packages (tier, tier_amount_minor, weekly_return_percent, lock_period_months, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (tier) DO UPDATE
		SET tier_amount_minor = EXCLUDED.tier_amount_minor,
		    weekly_return_percent = EXCLUDED.weekly_return_percent,
		    lock_period_months = EXCLUDED.lock_period_months,
		    is_active = TRUE,
		    updated_at = NOW()
	`, tier, tierAmountMinor, weeklyReturnPercent, lockPeriodMonths)
	return err
}

func (s *PackageStore) Deactivate(ctx context.Context, tx Execer, tier string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE stake_packages
		SET is_active = FALSE, updated_at = NOW()
		WHERE tier = $1
	`, tier)
	return err
}
