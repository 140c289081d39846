package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"staking/internal/services"
	"staking/internal/store"
)

func TestGetAccount(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{
		getByOwnerFn: func(_ context.Context, ownerID string) (store.BalanceAccount, error) {
			if ownerID != "user-1" {
				t.Fatalf("unexpected owner: %s", ownerID)
			}
			return store.BalanceAccount{OwnerID: "user-1", BalanceMinor: 123456, ReferralMinor: 2500}, nil
		},
	}, stubStakeStore{}, stubAccrualStore{}, stubPackageStore{}, stubTransactionStore{}, stubAdminStore{}, stubAuditStore{}, stubService{}, stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/account", nil)
	rr := serveAs(t, handler.GetAccount, "user-1", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["balance"] != "1234.56" || payload["referral_earnings"] != "25.00" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestListTransactionsPassesFilter(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{}, stubStakeStore{}, stubAccrualStore{}, stubPackageStore{}, stubTransactionStore{
		listByOwnerFn: func(_ context.Context, ownerID, txType string, limit, offset int) ([]store.Transaction, error) {
			if ownerID != "user-1" || txType != store.TxTypeAccrual {
				t.Fatalf("unexpected filter: %s/%s", ownerID, txType)
			}
			if limit != 20 || offset != 0 {
				t.Fatalf("unexpected paging: %d/%d", limit, offset)
			}
			return []store.Transaction{{ID: "tx-1", Type: store.TxTypeAccrual, AmountMinor: 2500}}, nil
		},
	}, stubAdminStore{}, stubAuditStore{}, stubService{}, stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/transactions?type=accrual", nil)
	rr := serveAs(t, handler.ListTransactions, "user-1", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload) != 1 || payload[0]["amount"] != "25.00" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestWithdrawRequiresConfirmation(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{}, stubStakeStore{}, stubAccrualStore{}, stubPackageStore{}, stubTransactionStore{}, stubAdminStore{}, stubAuditStore{}, stubService{
		withdrawFn: func(context.Context, string, int64) error {
			t.Fatalf("service should not be called")
			return nil
		},
	}, stubRunner{})

	body := strings.NewReader(`{"amount":"100.00"}`)
	req := httptest.NewRequest(http.MethodPost, "/transactions/withdraw", body)
	rr := serveAs(t, handler.Withdraw, "user-1", req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{}, stubStakeStore{}, stubAccrualStore{}, stubPackageStore{}, stubTransactionStore{}, stubAdminStore{}, stubAuditStore{}, stubService{
		withdrawFn: func(context.Context, string, int64) error {
			return services.ErrInsufficientBalance
		},
	}, stubRunner{})

	body := strings.NewReader(`{"amount":"100.00","confirm":true}`)
	req := httptest.NewRequest(http.MethodPost, "/transactions/withdraw", body)
	rr := serveAs(t, handler.Withdraw, "user-1", req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "insufficient_balance") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestClaimReferral(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{}, stubStakeStore{}, stubAccrualStore{}, stubPackageStore{}, stubTransactionStore{}, stubAdminStore{}, stubAuditStore{}, stubService{
		claimReferralFn: func(_ context.Context, ownerID string) (int64, error) {
			if ownerID != "user-1" {
				t.Fatalf("unexpected owner: %s", ownerID)
			}
			return 4000, nil
		},
	}, stubRunner{})

	req := httptest.NewRequest(http.MethodPost, "/referrals/claim", nil)
	rr := serveAs(t, handler.ClaimReferral, "user-1", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["claimed"] != "40.00" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestClaimReferralNothingToClaim(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{}, stubStakeStore{}, stubAccrualStore{}, stubPackageStore{}, stubTransactionStore{}, stubAdminStore{}, stubAuditStore{}, stubService{
		claimReferralFn: func(context.Context, string) (int64, error) {
			return 0, services.ErrNothingToClaim
		},
	}, stubRunner{})

	req := httptest.NewRequest(http.MethodPost, "/referrals/claim", nil)
	rr := serveAs(t, handler.ClaimReferral, "user-1", req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
