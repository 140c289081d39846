package store

import "context"

type AccountStore struct {
	db DB
}

// BalanceAccount is the single shared resource of the ledger: one row per
// user, mutated only inside serializable transactions with the row locked.
type BalanceAccount struct {
	OwnerID       string `db:"owner_id"`
	BalanceMinor  int64  `db:"balance_minor"`
	ReferralMinor int64  `db:"referral_minor"`
	CreatedAt     any    `db:"created_at"`
}

type AccountWithUser struct {
	OwnerID       string  `db:"owner_id"`
	BalanceMinor  int64   `db:"balance_minor"`
	ReferralMinor int64   `db:"referral_minor"`
	CreatedAt     any     `db:"created_at"`
	Username      *string `db:"username"`
	Email         *string `db:"email"`
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, ownerID string) error {
	query := `
		INSERT INTO balance_accounts (owner_id, balance_minor, referral_minor)
		VALUES ($1, 0, 0)
	`
	_, err := tx.ExecContext(ctx, query, ownerID)
	return err
}

func (s *AccountStore) GetByOwner(ctx context.Context, ownerID string) (BalanceAccount, error) {
	var row BalanceAccount
	err := s.db.GetContext(ctx, &row, `
		SELECT owner_id, balance_minor, referral_minor, created_at
		FROM balance_accounts
		WHERE owner_id = $1
	`, ownerID)
	if err != nil {
		return BalanceAccount{}, err
	}
	return row, nil
}

func (s *AccountStore) GetForUpdate(ctx context.Context, tx Getter, ownerID string) (BalanceAccount, error) {
	var row BalanceAccount
	err := tx.GetContext(ctx, &row, `
		SELECT owner_id, balance_minor, referral_minor
		FROM balance_accounts
		WHERE owner_id = $1
		FOR UPDATE
	`, ownerID)
	if err != nil {
		return BalanceAccount{}, err
	}
	return row, nil
}

func (s *AccountStore) UpdateBalance(ctx context.Context, tx Execer, ownerID string, balanceMinor int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE balance_accounts
		SET balance_minor = $1, updated_at = NOW()
		WHERE owner_id = $2
	`, balanceMinor, ownerID)
	return err
}

func (s *AccountStore) UpdateReferral(ctx context.Context, tx Execer, ownerID string, referralMinor int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE balance_accounts
		SET referral_minor = $1, updated_at = NOW()
		WHERE owner_id = $2
	`, referralMinor, ownerID)
	return err
}

func (s *AccountStore) ListAllWithUsers(ctx context.Context) ([]AccountWithUser, error) {
	var rows []AccountWithUser
	err := s.db.SelectContext(ctx, &rows, `
		SELECT a.owner_id, a.balance_minor, a.referral_minor, a.created_at,
		       u.username, u.email
		FROM balance_accounts a
		LEFT JOIN users u ON u.id = a.owner_id
		ORDER BY a.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
