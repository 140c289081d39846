package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"staking/internal/catalog"
	"staking/internal/middleware"
	"staking/internal/money"
	"staking/internal/services"
	"staking/internal/store"

	"github.com/go-chi/chi/v5"
)

type createStakeRequest struct {
	PackageType      string `json:"package_type"`
	Amount           string `json:"amount"`
	LockPeriodMonths int    `json:"lock_period_months"`
	Confirm          bool   `json:"confirm"`
}

func (h *Handler) CreateStake(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createStakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if !req.Confirm {
		respondError(w, http.StatusBadRequest, "confirmation_required")
		return
	}
	if req.PackageType == "" {
		respondError(w, http.StatusBadRequest, "package_type is required")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	stake, err := h.service.CreateStake(r.Context(), services.CreateStakeRequest{
		OwnerID:          userID,
		PackageType:      req.PackageType,
		AmountMinor:      amountMinor,
		LockPeriodMonths: req.LockPeriodMonths,
	})
	if err != nil {
		switch err {
		case services.ErrInsufficientBalance:
			respondError(w, http.StatusBadRequest, "insufficient_balance")
		case services.ErrInvalidAmount, catalog.ErrInvalidAmount:
			respondError(w, http.StatusBadRequest, "invalid_amount")
		case catalog.ErrInvalidLockPeriod:
			respondError(w, http.StatusBadRequest, "invalid_lock_period")
		case services.ErrUnknownPackage:
			respondError(w, http.StatusBadRequest, "unknown_package")
		default:
			respondError(w, http.StatusInternalServerError, "stake_failed")
		}
		return
	}
	respondJSON(w, http.StatusCreated, stakeResponse(stake))
}

func (h *Handler) ListStakes(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	stakes, err := h.stakes.ListByOwner(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load stakes")
		return
	}
	normalized := make([]map[string]any, 0, len(stakes))
	for _, stake := range stakes {
		normalized = append(normalized, stakeResponse(stake))
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) GetStake(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	stakeID := chi.URLParam(r, "id")
	stake, err := h.stakes.GetByID(r.Context(), stakeID)
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "stake_not_found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load stake")
		return
	}
	if stake.OwnerID != userID {
		respondError(w, http.StatusForbidden, "stake_access_denied")
		return
	}
	accruals, err := h.accruals.ListByStake(r.Context(), stakeID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load accrual history")
		return
	}
	history := make([]map[string]any, 0, len(accruals))
	for _, run := range accruals {
		history = append(history, map[string]any{
			"week_index":  run.WeekIndex,
			"amount":      money.FormatMinor(run.AmountMinor),
			"credited_at": run.CreditedAt,
		})
	}
	response := stakeResponse(stake)
	response["accruals"] = history
	respondJSON(w, http.StatusOK, response)
}

func stakeResponse(stake store.Stake) map[string]any {
	weekly := ""
	if rate, err := money.ParsePercent(stake.WeeklyReturnPercent); err == nil {
		weekly = money.FormatMinor(money.WeeklyProfitMinor(stake.PrincipalMinor, rate))
	}
	return map[string]any{
		"id":                    stake.ID,
		"package_type":          stake.PackageType,
		"principal":             money.FormatMinor(stake.PrincipalMinor),
		"weekly_return_percent": stake.WeeklyReturnPercent,
		"weekly_profit":         weekly,
		"lock_period_months":    stake.LockPeriodMonths,
		"start_date":            stake.StartDate,
		"end_date":              stake.EndDate,
		"profits_earned":        money.FormatMinor(stake.ProfitsMinor),
		"status":                stake.Status,
	}
}
