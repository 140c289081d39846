package handlers

import (
	"context"

	"staking/internal/services"
	"staking/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string, referredBy *string) error
	GetByEmail(ctx context.Context, email string) (store.User, error)
	GetByUsername(ctx context.Context, username string) (store.User, error)
	GetByID(ctx context.Context, userID string) (store.User, error)
	ListAll(ctx context.Context, limit, offset int) ([]store.User, error)
}

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, ownerID string) error
	GetByOwner(ctx context.Context, ownerID string) (store.BalanceAccount, error)
	ListAllWithUsers(ctx context.Context) ([]store.AccountWithUser, error)
}

type StakeStore interface {
	GetByID(ctx context.Context, stakeID string) (store.Stake, error)
	ListByOwner(ctx context.Context, ownerID string) ([]store.Stake, error)
	ListAll(ctx context.Context, limit, offset int) ([]store.Stake, error)
}

type AccrualStore interface {
	ListByStake(ctx context.Context, stakeID string) ([]store.AccrualRun, error)
}

type PackageStore interface {
	List(ctx context.Context) ([]store.StakePackage, error)
	SetTier(ctx context.Context, tx store.Execer, tier string, tierAmountMinor int64, weeklyReturnPercent string, lockPeriodMonths int) error
	Deactivate(ctx context.Context, tx store.Execer, tier string) error
}

type TransactionStore interface {
	ListByOwner(ctx context.Context, ownerID, txType string, limit, offset int) ([]store.Transaction, error)
	ListAll(ctx context.Context, limit, offset int) ([]store.Transaction, error)
}

type AdminStore interface {
	IsAdmin(ctx context.Context, userID string) (bool, bool, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
	CreateAdmin(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error
	GrantRole(ctx context.Context, tx store.Execer, adminUserID, role string) error
	HasAnyAdmin(ctx context.Context, tx store.Getter) (bool, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]store.AuditLog, error)
}

type StakeService interface {
	CreateStake(ctx context.Context, req services.CreateStakeRequest) (store.Stake, error)
	CompleteStake(ctx context.Context, stakeID string) error
	Deposit(ctx context.Context, ownerID string, amountMinor int64, actorID string) error
	Withdraw(ctx context.Context, ownerID string, amountMinor int64) error
	CreditReferral(ctx context.Context, ownerID string, amountMinor int64, actorID string) error
	ClaimReferral(ctx context.Context, ownerID string) (int64, error)
}

type AccrualRunner interface {
	RunOnce(ctx context.Context) (processed, failed int)
}
