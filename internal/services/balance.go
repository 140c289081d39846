package services

import (
	"context"
	"encoding/json"

	"staking/internal/money"
	"staking/internal/store"
	"staking/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Balance ledger operations. Deposits are credited by an admin once the
// on-chain transfer is confirmed; withdrawals debit immediately. Both go
// through the same serialized account path as stake creation.

func (s *StakeService) Deposit(ctx context.Context, ownerID string, amountMinor int64, actorID string) error {
	if amountMinor <= 0 {
		return ErrInvalidAmount
	}
	var balanceAfter int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, ownerID)
		if err != nil {
			return err
		}
		balanceAfter = account.BalanceMinor + amountMinor
		if err := s.accounts.UpdateBalance(ctx, tx, ownerID, balanceAfter); err != nil {
			return err
		}
		if err := s.journal.Create(ctx, tx, store.TransactionInput{
			ID:          uuid.NewString(),
			OwnerID:     ownerID,
			Type:        store.TxTypeDeposit,
			AmountMinor: amountMinor,
			Metadata:    "{}",
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"owner_id": ownerID,
			"amount":   money.FormatMinor(amountMinor),
		})
		return s.audit.Log(ctx, tx, actorID, "approve_deposit", "balance_account", ownerID, string(data))
	})
	if err != nil {
		return err
	}
	s.broadcastBalance(ownerID, balanceAfter)
	return nil
}

func (s *StakeService) Withdraw(ctx context.Context, ownerID string, amountMinor int64) error {
	if amountMinor <= 0 {
		return ErrInvalidAmount
	}
	var balanceAfter int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, ownerID)
		if err != nil {
			return err
		}
		if account.BalanceMinor < amountMinor {
			return ErrInsufficientBalance
		}
		balanceAfter = account.BalanceMinor - amountMinor
		if err := s.accounts.UpdateBalance(ctx, tx, ownerID, balanceAfter); err != nil {
			return err
		}
		if err := s.journal.Create(ctx, tx, store.TransactionInput{
			ID:          uuid.NewString(),
			OwnerID:     ownerID,
			Type:        store.TxTypeWithdrawal,
			AmountMinor: -amountMinor,
			Metadata:    "{}",
		}); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, ownerID, "withdraw", "balance_account", ownerID, "{}")
	})
	if err != nil {
		return err
	}
	s.broadcastBalance(ownerID, balanceAfter)
	return nil
}

// CreditReferral adds a bonus to the owner's referral pool, which is held
// apart from the spendable balance until claimed.
func (s *StakeService) CreditReferral(ctx context.Context, ownerID string, amountMinor int64, actorID string) error {
	if amountMinor <= 0 {
		return ErrInvalidAmount
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, ownerID)
		if err != nil {
			return err
		}
		if err := s.accounts.UpdateReferral(ctx, tx, ownerID, account.ReferralMinor+amountMinor); err != nil {
			return err
		}
		if err := s.journal.Create(ctx, tx, store.TransactionInput{
			ID:          uuid.NewString(),
			OwnerID:     ownerID,
			Type:        store.TxTypeReferralBonus,
			AmountMinor: amountMinor,
			Metadata:    "{}",
		}); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, "credit_referral", "balance_account", ownerID, "{}")
	})
}

// ClaimReferral moves the whole referral pool into the spendable balance.
func (s *StakeService) ClaimReferral(ctx context.Context, ownerID string) (int64, error) {
	var (
		claimedMinor int64
		balanceAfter int64
	)
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, ownerID)
		if err != nil {
			return err
		}
		if account.ReferralMinor <= 0 {
			return ErrNothingToClaim
		}
		claimedMinor = account.ReferralMinor
		balanceAfter = account.BalanceMinor + claimedMinor
		if err := s.accounts.UpdateReferral(ctx, tx, ownerID, 0); err != nil {
			return err
		}
		if err := s.accounts.UpdateBalance(ctx, tx, ownerID, balanceAfter); err != nil {
			return err
		}
		if err := s.journal.Create(ctx, tx, store.TransactionInput{
			ID:          uuid.NewString(),
			OwnerID:     ownerID,
			Type:        store.TxTypeReferralClaim,
			AmountMinor: claimedMinor,
			Metadata:    "{}",
		}); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, ownerID, "claim_referral", "balance_account", ownerID, "{}")
	})
	if err != nil {
		return 0, err
	}
	s.broadcastBalance(ownerID, balanceAfter)
	return claimedMinor, nil
}

func (s *StakeService) broadcastBalance(ownerID string, balanceMinor int64) {
	s.hub.BroadcastStakeUpdate(ownerID, websocket.StakeUpdate{
		Type:    websocket.EventBalanceChanged,
		Balance: money.FormatMinor(balanceMinor),
	})
}
