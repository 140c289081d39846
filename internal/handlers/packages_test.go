package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"staking/internal/store"
)

func TestListPackages(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{}, stubStakeStore{}, stubAccrualStore{}, stubPackageStore{
		listFn: func(context.Context) ([]store.StakePackage, error) {
			return []store.StakePackage{
				{Tier: "tier-100", TierAmountMinor: 10000, WeeklyReturnPercent: "2.5", LockPeriodMonths: 3},
				{Tier: "tier-5000", TierAmountMinor: 500000, WeeklyReturnPercent: "3", LockPeriodMonths: 6},
			}, nil
		},
	}, stubTransactionStore{}, stubAdminStore{}, stubAuditStore{}, stubService{}, stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/packages", nil)
	rr := httptest.NewRecorder()
	handler.ListPackages(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	packages, ok := payload["packages"].([]any)
	if !ok || len(packages) != 2 {
		t.Fatalf("unexpected packages: %#v", payload["packages"])
	}
	if payload["custom_minimum"] != "100.00" {
		t.Fatalf("unexpected custom minimum: %v", payload["custom_minimum"])
	}
	if payload["high_rate_threshold"] != "5000.00" {
		t.Fatalf("unexpected threshold: %v", payload["high_rate_threshold"])
	}
}

func TestPriceCustomPackageQuote(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{}, stubStakeStore{}, stubAccrualStore{}, stubPackageStore{}, stubTransactionStore{}, stubAdminStore{}, stubAuditStore{}, stubService{}, stubRunner{})

	body := strings.NewReader(`{"amount":"6000.00","lock_period_months":6}`)
	req := httptest.NewRequest(http.MethodPost, "/packages/custom/price", body)
	rr := httptest.NewRecorder()
	handler.PriceCustomPackage(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["weekly_return_percent"] != "3" {
		t.Fatalf("unexpected rate: %v", payload["weekly_return_percent"])
	}
	if payload["weekly_profit"] != "180.00" {
		t.Fatalf("unexpected weekly profit: %v", payload["weekly_profit"])
	}
}

func TestPriceCustomPackageBelowMinimum(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{}, stubStakeStore{}, stubAccrualStore{}, stubPackageStore{}, stubTransactionStore{}, stubAdminStore{}, stubAuditStore{}, stubService{}, stubRunner{})

	body := strings.NewReader(`{"amount":"50.00","lock_period_months":3}`)
	req := httptest.NewRequest(http.MethodPost, "/packages/custom/price", body)
	rr := httptest.NewRecorder()
	handler.PriceCustomPackage(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "invalid_amount") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestPriceCustomPackageBadLockPeriod(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubAccountStore{}, stubStakeStore{}, stubAccrualStore{}, stubPackageStore{}, stubTransactionStore{}, stubAdminStore{}, stubAuditStore{}, stubService{}, stubRunner{})

	body := strings.NewReader(`{"amount":"1000.00","lock_period_months":4}`)
	req := httptest.NewRequest(http.MethodPost, "/packages/custom/price", body)
	rr := httptest.NewRecorder()
	handler.PriceCustomPackage(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "invalid_lock_period") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}
