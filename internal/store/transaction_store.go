package store

import (
	"context"
	"fmt"
)

// Transaction types journaled against a balance account or stake.
const (
	TxTypeDeposit       = "deposit"
	TxTypeWithdrawal    = "withdrawal"
	TxTypeStake         = "stake"
	TxTypeAccrual       = "accrual"
	TxTypeCompletion    = "completion"
	TxTypeReferralBonus = "referral_bonus"
	TxTypeReferralClaim = "referral_claim"
)

type TransactionStore struct {
	db DB
}

type Transaction struct {
	ID          string  `db:"id"`
	OwnerID     string  `db:"owner_id"`
	Type        string  `db:"type"`
	AmountMinor int64   `db:"amount_minor"`
	StakeID     *string `db:"stake_id"`
	Metadata    string  `db:"metadata"`
	CreatedAt   any     `db:"created_at"`
}

type TransactionInput struct {
	ID          string
	OwnerID     string
	Type        string
	AmountMinor int64
	StakeID     *string
	Metadata    string
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Create(ctx context.Context, tx Execer, input TransactionInput) error {
	query := `
		INSERT INTO transactions (id, owner_id, type, amount_minor, stake_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.OwnerID, input.Type, input.AmountMinor, input.StakeID, input.Metadata,
	)
	return err
}

func (s *TransactionStore) ListByOwner(ctx context.Context, ownerID, txType string, limit, offset int) ([]Transaction, error) {
	var rows []Transaction
	query := `
		SELECT id, owner_id, type, amount_minor, stake_id, metadata, created_at
		FROM transactions
		WHERE owner_id = $1
	`
	args := []any{ownerID}
	param := 2
	if txType != "" {
		query += " AND type = $2"
		args = append(args, txType)
		param = 3
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", param, param+1)
	args = append(args, limit, offset)
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TransactionStore) ListAll(ctx context.Context, limit, offset int) ([]Transaction, error) {
	var rows []Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, owner_id, type, amount_minor, stake_id, metadata, created_at
		FROM transactions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
