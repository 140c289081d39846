// Package catalog holds the staking package menu and the pricing rules
// for user-defined packages. Everything here is pure; persistence of the
// live catalog lives in the store layer.
package catalog

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidLockPeriod = errors.New("invalid lock period")
)

// PackageTypeCustom marks stakes priced by rule instead of catalog lookup.
const PackageTypeCustom = "custom"

// MinimumStakeMinor is the smallest stake accepted, catalog or custom.
const MinimumStakeMinor int64 = 100_00

// HighRateThresholdMinor is the principal at and above which the higher
// weekly rate applies. The threshold is inclusive.
const HighRateThresholdMinor int64 = 5000_00

var (
	baseRate = decimal.RequireFromString("2.5")
	highRate = decimal.RequireFromString("3")
)

var allowedLockMonths = map[int]struct{}{1: {}, 3: {}, 5: {}, 6: {}, 12: {}}

type Template struct {
	Tier                string
	TierAmountMinor     int64
	WeeklyReturnPercent decimal.Decimal
	LockPeriodMonths    int
}

// DefaultTemplates returns the built-in tier menu. The migration seeds
// these into stake_packages; admins may adjust them there afterwards.
func DefaultTemplates() []Template {
	return []Template{
		{Tier: "tier-100", TierAmountMinor: 100_00, WeeklyReturnPercent: baseRate, LockPeriodMonths: 3},
		{Tier: "tier-500", TierAmountMinor: 500_00, WeeklyReturnPercent: baseRate, LockPeriodMonths: 3},
		{Tier: "tier-1000", TierAmountMinor: 1000_00, WeeklyReturnPercent: baseRate, LockPeriodMonths: 3},
		{Tier: "tier-5000", TierAmountMinor: 5000_00, WeeklyReturnPercent: highRate, LockPeriodMonths: 6},
	}
}

// PriceCustomPackage validates and prices a user-chosen amount and lock
// period. Deterministic, no side effects.
func PriceCustomPackage(amountMinor int64, lockPeriodMonths int) (decimal.Decimal, error) {
	if amountMinor < MinimumStakeMinor {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if _, ok := allowedLockMonths[lockPeriodMonths]; !ok {
		return decimal.Decimal{}, ErrInvalidLockPeriod
	}
	return RateForAmount(amountMinor), nil
}

// RateForAmount returns the weekly return percent for a principal.
func RateForAmount(amountMinor int64) decimal.Decimal {
	if amountMinor >= HighRateThresholdMinor {
		return highRate
	}
	return baseRate
}

// AllowedLockPeriods lists the valid custom lock periods in months.
func AllowedLockPeriods() []int {
	return []int{1, 3, 5, 6, 12}
}
