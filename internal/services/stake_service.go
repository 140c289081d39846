package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"staking/internal/catalog"
	"staking/internal/db"
	"staking/internal/money"
	"staking/internal/store"
	"staking/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrStakeNotFound       = errors.New("stake not found")
	ErrUnknownPackage      = errors.New("unknown package")
	ErrNothingToClaim      = errors.New("no referral earnings to claim")
)

const week = 7 * 24 * time.Hour

type StakeService struct {
	txRunner db.TxRunner
	accounts AccountStore
	stakes   StakeStore
	accruals AccrualStore
	packages PackageStore
	journal  TransactionStore
	audit    AuditStore
	hub      EventHub
	now      func() time.Time
}

type AccountStore interface {
	GetForUpdate(ctx context.Context, tx store.Getter, ownerID string) (store.BalanceAccount, error)
	UpdateBalance(ctx context.Context, tx store.Execer, ownerID string, balanceMinor int64) error
	UpdateReferral(ctx context.Context, tx store.Execer, ownerID string, referralMinor int64) error
}

type StakeStore interface {
	Create(ctx context.Context, tx store.Execer, input store.StakeInput) error
	GetForUpdate(ctx context.Context, tx store.Getter, stakeID string) (store.Stake, error)
	AddProfits(ctx context.Context, tx store.Execer, stakeID string, deltaMinor int64) (int64, error)
	MarkCompleted(ctx context.Context, tx store.Execer, stakeID string) (int64, error)
}

type AccrualStore interface {
	Insert(ctx context.Context, tx store.Execer, stakeID string, weekIndex int, amountMinor int64) (int64, error)
	LastWeekIndex(ctx context.Context, tx store.Getter, stakeID string) (int, error)
}

type PackageStore interface {
	GetByTier(ctx context.Context, tier string) (store.StakePackage, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type EventHub interface {
	BroadcastStakeUpdate(userID string, update websocket.StakeUpdate)
}

func NewStakeService(txRunner db.TxRunner, accounts AccountStore, stakes StakeStore, accruals AccrualStore, packages PackageStore, journal TransactionStore, audit AuditStore, hub EventHub) *StakeService {
	return &StakeService{
		txRunner: txRunner,
		accounts: accounts,
		stakes:   stakes,
		accruals: accruals,
		packages: packages,
		journal:  journal,
		audit:    audit,
		hub:      hub,
		now:      time.Now,
	}
}

type CreateStakeRequest struct {
	OwnerID          string
	PackageType      string
	AmountMinor      int64
	LockPeriodMonths int
}

// CreateStake resolves the package, then debits the owner and opens the
// stake in one transaction. A rejected request leaves balance and stake
// set untouched.
func (s *StakeService) CreateStake(ctx context.Context, req CreateStakeRequest) (store.Stake, error) {
	if req.AmountMinor <= 0 {
		return store.Stake{}, ErrInvalidAmount
	}
	rate, lockMonths, err := s.resolvePackage(ctx, req)
	if err != nil {
		return store.Stake{}, err
	}
	start := s.now().UTC()
	end := start.AddDate(0, lockMonths, 0)
	stakeID := uuid.NewString()
	var balanceAfter int64
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, req.OwnerID)
		if err != nil {
			return err
		}
		if account.BalanceMinor < req.AmountMinor {
			return ErrInsufficientBalance
		}
		balanceAfter = account.BalanceMinor - req.AmountMinor
		if err := s.accounts.UpdateBalance(ctx, tx, req.OwnerID, balanceAfter); err != nil {
			return err
		}
		if err := s.stakes.Create(ctx, tx, store.StakeInput{
			ID:                  stakeID,
			OwnerID:             req.OwnerID,
			PackageType:         req.PackageType,
			PrincipalMinor:      req.AmountMinor,
			WeeklyReturnPercent: rate.String(),
			LockPeriodMonths:    lockMonths,
			StartDate:           start,
			EndDate:             end,
		}); err != nil {
			return err
		}
		if err := s.journal.Create(ctx, tx, store.TransactionInput{
			ID:          uuid.NewString(),
			OwnerID:     req.OwnerID,
			Type:        store.TxTypeStake,
			AmountMinor: -req.AmountMinor,
			StakeID:     &stakeID,
			Metadata:    "{}",
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"package_type": req.PackageType,
			"rate":         rate.String(),
		})
		return s.audit.Log(ctx, tx, req.OwnerID, "create_stake", "stake", stakeID, string(data))
	})
	if err != nil {
		return store.Stake{}, err
	}
	s.hub.BroadcastStakeUpdate(req.OwnerID, websocket.StakeUpdate{
		Type:    websocket.EventStakeCreated,
		StakeID: stakeID,
		Amount:  money.FormatMinor(req.AmountMinor),
		Balance: money.FormatMinor(balanceAfter),
	})
	return store.Stake{
		ID:                  stakeID,
		OwnerID:             req.OwnerID,
		PackageType:         req.PackageType,
		PrincipalMinor:      req.AmountMinor,
		WeeklyReturnPercent: rate.String(),
		LockPeriodMonths:    lockMonths,
		StartDate:           start,
		EndDate:             end,
		Status:              store.StakeStatusActive,
	}, nil
}

func (s *StakeService) resolvePackage(ctx context.Context, req CreateStakeRequest) (decimal.Decimal, int, error) {
	if req.PackageType == catalog.PackageTypeCustom {
		rate, err := catalog.PriceCustomPackage(req.AmountMinor, req.LockPeriodMonths)
		if err != nil {
			return decimal.Decimal{}, 0, err
		}
		return rate, req.LockPeriodMonths, nil
	}
	pkg, err := s.packages.GetByTier(ctx, req.PackageType)
	if err != nil {
		if err == sql.ErrNoRows {
			return decimal.Decimal{}, 0, ErrUnknownPackage
		}
		return decimal.Decimal{}, 0, err
	}
	if req.AmountMinor < pkg.TierAmountMinor {
		return decimal.Decimal{}, 0, ErrInvalidAmount
	}
	rate, err := money.ParsePercent(pkg.WeeklyReturnPercent)
	if err != nil {
		return decimal.Decimal{}, 0, err
	}
	return rate, pkg.LockPeriodMonths, nil
}

// CompleteStake finalizes a matured stake: principal plus accrued profit
// goes back to the owner's balance. Calling it early, or again on a
// completed stake, is a no-op.
func (s *StakeService) CompleteStake(ctx context.Context, stakeID string) error {
	now := s.now().UTC()
	var (
		ownerID      string
		payoutMinor  int64
		balanceAfter int64
		completed    bool
	)
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		completed = false
		stake, err := s.stakes.GetForUpdate(ctx, tx, stakeID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrStakeNotFound
			}
			return err
		}
		if stake.Status != store.StakeStatusActive {
			return nil
		}
		if now.Before(stake.EndDate) {
			return nil
		}
		rows, err := s.stakes.MarkCompleted(ctx, tx, stakeID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}
		account, err := s.accounts.GetForUpdate(ctx, tx, stake.OwnerID)
		if err != nil {
			return err
		}
		ownerID = stake.OwnerID
		payoutMinor = stake.PrincipalMinor + stake.ProfitsMinor
		balanceAfter = account.BalanceMinor + payoutMinor
		if err := s.accounts.UpdateBalance(ctx, tx, stake.OwnerID, balanceAfter); err != nil {
			return err
		}
		if err := s.journal.Create(ctx, tx, store.TransactionInput{
			ID:          uuid.NewString(),
			OwnerID:     stake.OwnerID,
			Type:        store.TxTypeCompletion,
			AmountMinor: payoutMinor,
			StakeID:     &stakeID,
			Metadata:    "{}",
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"payout": money.FormatMinor(payoutMinor),
		})
		if err := s.audit.Log(ctx, tx, stake.OwnerID, "complete_stake", "stake", stakeID, string(data)); err != nil {
			return err
		}
		completed = true
		return nil
	})
	if err != nil {
		return err
	}
	if completed {
		s.hub.BroadcastStakeUpdate(ownerID, websocket.StakeUpdate{
			Type:    websocket.EventStakeCompleted,
			StakeID: stakeID,
			Amount:  money.FormatMinor(payoutMinor),
			Balance: money.FormatMinor(balanceAfter),
		})
	}
	return nil
}

// AccrueStake credits every elapsed whole week not yet recorded for the
// stake. The accrual_runs primary key makes re-runs credit each week at
// most once, so a crashed run is safe to repeat. Returns the number of
// weeks credited.
func (s *StakeService) AccrueStake(ctx context.Context, stakeID string) (int, error) {
	now := s.now().UTC()
	var (
		ownerID  string
		credited []int64
	)
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		credited = credited[:0]
		stake, err := s.stakes.GetForUpdate(ctx, tx, stakeID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrStakeNotFound
			}
			return err
		}
		if stake.Status != store.StakeStatusActive {
			return nil
		}
		ownerID = stake.OwnerID
		rate, err := money.ParsePercent(stake.WeeklyReturnPercent)
		if err != nil {
			return err
		}
		weeklyMinor := money.WeeklyProfitMinor(stake.PrincipalMinor, rate)
		elapsed := elapsedWeeks(stake.StartDate, now)
		term := termWeeks(stake.StartDate, stake.EndDate)
		if !now.Before(stake.EndDate) {
			// matured: the full term is owed, including the final
			// partial week, before completion freezes the stake
			elapsed = term
		} else if elapsed > term {
			elapsed = term
		}
		last, err := s.accruals.LastWeekIndex(ctx, tx, stakeID)
		if err != nil {
			return err
		}
		for weekIndex := last + 1; weekIndex <= elapsed; weekIndex++ {
			rows, err := s.accruals.Insert(ctx, tx, stakeID, weekIndex, weeklyMinor)
			if err != nil {
				return err
			}
			if rows == 0 {
				// already credited by another run
				continue
			}
			if _, err := s.stakes.AddProfits(ctx, tx, stakeID, weeklyMinor); err != nil {
				return err
			}
			if err := s.journal.Create(ctx, tx, store.TransactionInput{
				ID:          uuid.NewString(),
				OwnerID:     stake.OwnerID,
				Type:        store.TxTypeAccrual,
				AmountMinor: weeklyMinor,
				StakeID:     &stakeID,
				Metadata:    "{}",
			}); err != nil {
				return err
			}
			credited = append(credited, weeklyMinor)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, amount := range credited {
		s.hub.BroadcastStakeUpdate(ownerID, websocket.StakeUpdate{
			Type:    websocket.EventProfitAccrued,
			StakeID: stakeID,
			Amount:  money.FormatMinor(amount),
		})
	}
	return len(credited), nil
}

// elapsedWeeks counts whole weeks between start and now.
func elapsedWeeks(start, now time.Time) int {
	if !now.After(start) {
		return 0
	}
	return int(now.Sub(start) / week)
}

// termWeeks caps accrual at the lock period: the number of weeks that fit
// in [start, end], rounding the final partial week up so a stake maturing
// mid-week still earns its last accrual before completion.
func termWeeks(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	weeks := int(d / week)
	if d%week > 0 {
		weeks++
	}
	return weeks
}
