package handlers

import (
	"encoding/json"
	"net/http"

	"staking/internal/middleware"
	"staking/internal/money"
	"staking/internal/services"
	"staking/internal/store"
)

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	account, err := h.accounts.GetByOwner(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load account")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"owner_id":          account.OwnerID,
		"balance":           money.FormatMinor(account.BalanceMinor),
		"referral_earnings": money.FormatMinor(account.ReferralMinor),
		"created_at":        account.CreatedAt,
	})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	txType := query.Get("type")
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 20)
	offset := (page - 1) * limit
	transactions, err := h.transactions.ListByOwner(r.Context(), userID, txType, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	respondJSON(w, http.StatusOK, transactionList(transactions))
}

type withdrawRequest struct {
	Amount  string `json:"amount"`
	Confirm bool   `json:"confirm"`
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if !req.Confirm {
		respondError(w, http.StatusBadRequest, "confirmation_required")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	if err := h.service.Withdraw(r.Context(), userID, amountMinor); err != nil {
		switch err {
		case services.ErrInsufficientBalance:
			respondError(w, http.StatusBadRequest, "insufficient_balance")
		case services.ErrInvalidAmount:
			respondError(w, http.StatusBadRequest, "invalid_amount")
		default:
			respondError(w, http.StatusInternalServerError, "withdrawal_failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "withdrawn"})
}

func (h *Handler) ClaimReferral(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	claimed, err := h.service.ClaimReferral(r.Context(), userID)
	if err != nil {
		if err == services.ErrNothingToClaim {
			respondError(w, http.StatusBadRequest, "nothing_to_claim")
			return
		}
		respondError(w, http.StatusInternalServerError, "claim_failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"claimed": money.FormatMinor(claimed),
	})
}

func transactionList(transactions []store.Transaction) []map[string]any {
	normalized := make([]map[string]any, 0, len(transactions))
	for _, tx := range transactions {
		stakeID := ""
		if tx.StakeID != nil {
			stakeID = *tx.StakeID
		}
		normalized = append(normalized, map[string]any{
			"id":         tx.ID,
			"owner_id":   tx.OwnerID,
			"type":       tx.Type,
			"amount":     money.FormatMinor(tx.AmountMinor),
			"stake_id":   stakeID,
			"metadata":   tx.Metadata,
			"created_at": tx.CreatedAt,
		})
	}
	return normalized
}
