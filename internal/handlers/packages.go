package handlers

import (
	"encoding/json"
	"net/http"

	"staking/internal/catalog"
	"staking/internal/money"
)

func (h *Handler) ListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.packages.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load packages")
		return
	}
	normalized := make([]map[string]any, 0, len(packages))
	for _, pkg := range packages {
		normalized = append(normalized, map[string]any{
			"tier":                  pkg.Tier,
			"tier_amount":           money.FormatMinor(pkg.TierAmountMinor),
			"weekly_return_percent": pkg.WeeklyReturnPercent,
			"lock_period_months":    pkg.LockPeriodMonths,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"packages":            normalized,
		"custom_minimum":      money.FormatMinor(catalog.MinimumStakeMinor),
		"custom_lock_periods": catalog.AllowedLockPeriods(),
		"high_rate_threshold": money.FormatMinor(catalog.HighRateThresholdMinor),
	})
}

type priceCustomRequest struct {
	Amount           string `json:"amount"`
	LockPeriodMonths int    `json:"lock_period_months"`
}

// PriceCustomPackage quotes a user-defined package. Pure lookup, nothing
// is persisted, so an identical request always returns the same rate.
func (h *Handler) PriceCustomPackage(w http.ResponseWriter, r *http.Request) {
	var req priceCustomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	rate, err := catalog.PriceCustomPackage(amountMinor, req.LockPeriodMonths)
	if err != nil {
		switch err {
		case catalog.ErrInvalidAmount:
			respondError(w, http.StatusBadRequest, "invalid_amount")
		case catalog.ErrInvalidLockPeriod:
			respondError(w, http.StatusBadRequest, "invalid_lock_period")
		default:
			respondError(w, http.StatusInternalServerError, "pricing_failed")
		}
		return
	}
	weeklyMinor := money.WeeklyProfitMinor(amountMinor, rate)
	respondJSON(w, http.StatusOK, map[string]any{
		"amount":                money.FormatMinor(amountMinor),
		"lock_period_months":    req.LockPeriodMonths,
		"weekly_return_percent": rate.String(),
		"weekly_profit":         money.FormatMinor(weeklyMinor),
	})
}
