package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"staking/internal/auth"
	"staking/internal/config"
	"staking/internal/middleware"
	"staking/internal/services"
	"staking/internal/store"
	"staking/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn        func(ctx context.Context, tx store.Execer, id, username, email, passwordHash string, referredBy *string) error
	getByEmailFn    func(ctx context.Context, email string) (store.User, error)
	getByUsernameFn func(ctx context.Context, username string) (store.User, error)
	getByIDFn       func(ctx context.Context, userID string) (store.User, error)
	listAllFn       func(ctx context.Context, limit, offset int) ([]store.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string, referredBy *string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, username, email, passwordHash, referredBy)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (store.User, error) {
	if s.getByEmailFn == nil {
		return store.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByUsername(ctx context.Context, username string) (store.User, error) {
	if s.getByUsernameFn == nil {
		return store.User{}, nil
	}
	return s.getByUsernameFn(ctx, username)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (store.User, error) {
	if s.getByIDFn == nil {
		return store.User{}, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) ListAll(ctx context.Context, limit, offset int) ([]store.User, error) {
	if s.listAllFn == nil {
		return nil, nil
	}
	return s.listAllFn(ctx, limit, offset)
}

type stubAccountStore struct {
	createFn           func(ctx context.Context, tx store.Execer, ownerID string) error
	getByOwnerFn       func(ctx context.Context, ownerID string) (store.BalanceAccount, error)
	listAllWithUsersFn func(ctx context.Context) ([]store.AccountWithUser, error)
}

func (s stubAccountStore) Create(ctx context.Context, tx store.Execer, ownerID string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, ownerID)
}

func (s stubAccountStore) GetByOwner(ctx context.Context, ownerID string) (store.BalanceAccount, error) {
	if s.getByOwnerFn == nil {
		return store.BalanceAccount{}, nil
	}
	return s.getByOwnerFn(ctx, ownerID)
}

func (s stubAccountStore) ListAllWithUsers(ctx context.Context) ([]store.AccountWithUser, error) {
	if s.listAllWithUsersFn == nil {
		return nil, nil
	}
	return s.listAllWithUsersFn(ctx)
}

type stubStakeStore struct {
	getByIDFn     func(ctx context.Context, stakeID string) (store.Stake, error)
	listByOwnerFn func(ctx context.Context, ownerID string) ([]store.Stake, error)
	listAllFn     func(ctx context.Context, limit, offset int) ([]store.Stake, error)
}

func (s stubStakeStore) GetByID(ctx context.Context, stakeID string) (store.Stake, error) {
	if s.getByIDFn == nil {
		return store.Stake{}, nil
	}
	return s.getByIDFn(ctx, stakeID)
}

func (s stubStakeStore) ListByOwner(ctx context.Context, ownerID string) ([]store.Stake, error) {
	if s.listByOwnerFn == nil {
		return nil, nil
	}
	return s.listByOwnerFn(ctx, ownerID)
}

func (s stubStakeStore) ListAll(ctx context.Context, limit, offset int) ([]store.Stake, error) {
	if s.listAllFn == nil {
		return nil, nil
	}
	return s.listAllFn(ctx, limit, offset)
}

type stubAccrualStore struct {
	listByStakeFn func(ctx context.Context, stakeID string) ([]store.AccrualRun, error)
}

func (s stubAccrualStore) ListByStake(ctx context.Context, stakeID string) ([]store.AccrualRun, error) {
	if s.listByStakeFn == nil {
		return nil, nil
	}
	return s.listByStakeFn(ctx, stakeID)
}

type stubPackageStore struct {
	listFn       func(ctx context.Context) ([]store.StakePackage, error)
	setTierFn    func(ctx context.Context, tx store.Execer, tier string, tierAmountMinor int64, weeklyReturnPercent string, lockPeriodMonths int) error
	deactivateFn func(ctx context.Context, tx store.Execer, tier string) error
}

func (s stubPackageStore) List(ctx context.Context) ([]store.StakePackage, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func (s stubPackageStore) SetTier(ctx context.Context, tx store.Execer, tier string, tierAmountMinor int64, weeklyReturnPercent string, lockPeriodMonths int) error {
	if s.setTierFn == nil {
		return nil
	}
	return s.setTierFn(ctx, tx, tier, tierAmountMinor, weeklyReturnPercent, lockPeriodMonths)
}

func (s stubPackageStore) Deactivate(ctx context.Context, tx store.Execer, tier string) error {
	if s.deactivateFn == nil {
		return nil
	}
	return s.deactivateFn(ctx, tx, tier)
}

type stubTransactionStore struct {
	listByOwnerFn func(ctx context.Context, ownerID, txType string, limit, offset int) ([]store.Transaction, error)
	listAllFn     func(ctx context.Context, limit, offset int) ([]store.Transaction, error)
}

func (s stubTransactionStore) ListByOwner(ctx context.Context, ownerID, txType string, limit, offset int) ([]store.Transaction, error) {
	if s.listByOwnerFn == nil {
		return nil, nil
	}
	return s.listByOwnerFn(ctx, ownerID, txType, limit, offset)
}

func (s stubTransactionStore) ListAll(ctx context.Context, limit, offset int) ([]store.Transaction, error) {
	if s.listAllFn == nil {
		return nil, nil
	}
	return s.listAllFn(ctx, limit, offset)
}

type stubAdminStore struct {
	isAdminFn     func(ctx context.Context, userID string) (bool, bool, error)
	hasRoleFn     func(ctx context.Context, userID, role string) (bool, error)
	createAdminFn func(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error
	grantRoleFn   func(ctx context.Context, tx store.Execer, adminUserID, role string) error
	hasAnyAdminFn func(ctx context.Context, tx store.Getter) (bool, error)
}

func (s stubAdminStore) IsAdmin(ctx context.Context, userID string) (bool, bool, error) {
	if s.isAdminFn == nil {
		return false, false, nil
	}
	return s.isAdminFn(ctx, userID)
}

func (s stubAdminStore) HasRole(ctx context.Context, userID, role string) (bool, error) {
	if s.hasRoleFn == nil {
		return false, nil
	}
	return s.hasRoleFn(ctx, userID, role)
}

func (s stubAdminStore) CreateAdmin(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error {
	if s.createAdminFn == nil {
		return nil
	}
	return s.createAdminFn(ctx, tx, userID, isSuper, createdBy)
}

func (s stubAdminStore) GrantRole(ctx context.Context, tx store.Execer, adminUserID, role string) error {
	if s.grantRoleFn == nil {
		return nil
	}
	return s.grantRoleFn(ctx, tx, adminUserID, role)
}

func (s stubAdminStore) HasAnyAdmin(ctx context.Context, tx store.Getter) (bool, error) {
	if s.hasAnyAdminFn == nil {
		return false, nil
	}
	return s.hasAnyAdminFn(ctx, tx)
}

type stubAuditStore struct {
	logFn  func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	listFn func(ctx context.Context, limit, offset int) ([]store.AuditLog, error)
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

func (s stubAuditStore) List(ctx context.Context, limit, offset int) ([]store.AuditLog, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubService struct {
	createStakeFn    func(ctx context.Context, req services.CreateStakeRequest) (store.Stake, error)
	completeStakeFn  func(ctx context.Context, stakeID string) error
	depositFn        func(ctx context.Context, ownerID string, amountMinor int64, actorID string) error
	withdrawFn       func(ctx context.Context, ownerID string, amountMinor int64) error
	creditReferralFn func(ctx context.Context, ownerID string, amountMinor int64, actorID string) error
	claimReferralFn  func(ctx context.Context, ownerID string) (int64, error)
}

func (s stubService) CreateStake(ctx context.Context, req services.CreateStakeRequest) (store.Stake, error) {
	if s.createStakeFn == nil {
		return store.Stake{}, nil
	}
	return s.createStakeFn(ctx, req)
}

func (s stubService) CompleteStake(ctx context.Context, stakeID string) error {
	if s.completeStakeFn == nil {
		return nil
	}
	return s.completeStakeFn(ctx, stakeID)
}

func (s stubService) Deposit(ctx context.Context, ownerID string, amountMinor int64, actorID string) error {
	if s.depositFn == nil {
		return nil
	}
	return s.depositFn(ctx, ownerID, amountMinor, actorID)
}

func (s stubService) Withdraw(ctx context.Context, ownerID string, amountMinor int64) error {
	if s.withdrawFn == nil {
		return nil
	}
	return s.withdrawFn(ctx, ownerID, amountMinor)
}

func (s stubService) CreditReferral(ctx context.Context, ownerID string, amountMinor int64, actorID string) error {
	if s.creditReferralFn == nil {
		return nil
	}
	return s.creditReferralFn(ctx, ownerID, amountMinor, actorID)
}

func (s stubService) ClaimReferral(ctx context.Context, ownerID string) (int64, error) {
	if s.claimReferralFn == nil {
		return 0, nil
	}
	return s.claimReferralFn(ctx, ownerID)
}

type stubRunner struct {
	runOnceFn func(ctx context.Context) (int, int)
}

func (s stubRunner) RunOnce(ctx context.Context) (int, int) {
	if s.runOnceFn == nil {
		return 0, 0
	}
	return s.runOnceFn(ctx)
}

func newTestHandler(txRunner fakeTxRunner, users stubUserStore, accounts stubAccountStore, stakes stubStakeStore, accruals stubAccrualStore, packages stubPackageStore, transactions stubTransactionStore, admin stubAdminStore, audit stubAuditStore, service stubService, runner stubRunner) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	return New(txRunner, cfg, users, accounts, stakes, accruals, packages, transactions, admin, audit, service, runner, websocket.NewHub())
}

func serveAs(t *testing.T, handler http.HandlerFunc, userID string, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken("secret", userID, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(handler).ServeHTTP(rr, req)
	return rr
}
