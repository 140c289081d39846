package handlers

import (
	"encoding/json"
	"net/http"

	"staking/internal/middleware"
	"staking/internal/money"
	"staking/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 50)
	offset := (page - 1) * limit
	users, err := h.users.ListAll(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load users")
		return
	}
	normalized := make([]map[string]any, 0, len(users))
	for _, user := range users {
		referredBy := ""
		if user.ReferredBy != nil {
			referredBy = *user.ReferredBy
		}
		normalized = append(normalized, map[string]any{
			"id":          user.ID,
			"username":    user.Username,
			"email":       user.Email,
			"referred_by": referredBy,
			"created_at":  user.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) AdminListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAllWithUsers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load accounts")
		return
	}
	normalized := make([]map[string]any, 0, len(accounts))
	for _, account := range accounts {
		username := ""
		if account.Username != nil {
			username = *account.Username
		}
		normalized = append(normalized, map[string]any{
			"owner_id":          account.OwnerID,
			"username":          username,
			"balance":           money.FormatMinor(account.BalanceMinor),
			"referral_earnings": money.FormatMinor(account.ReferralMinor),
			"created_at":        account.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) AdminListStakes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 50)
	offset := (page - 1) * limit
	stakes, err := h.stakes.ListAll(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load stakes")
		return
	}
	normalized := make([]map[string]any, 0, len(stakes))
	for _, stake := range stakes {
		row := stakeResponse(stake)
		row["owner_id"] = stake.OwnerID
		normalized = append(normalized, row)
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) AdminListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 50)
	offset := (page - 1) * limit
	transactions, err := h.transactions.ListAll(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	respondJSON(w, http.StatusOK, transactionList(transactions))
}

type setPackageRequest struct {
	Tier                string `json:"tier"`
	TierAmount          string `json:"tier_amount"`
	WeeklyReturnPercent string `json:"weekly_return_percent"`
	LockPeriodMonths    int    `json:"lock_period_months"`
}

func (h *Handler) AdminSetPackage(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	var req setPackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Tier == "" {
		respondError(w, http.StatusBadRequest, "tier is required")
		return
	}
	amountMinor, err := parseAmountMinor(req.TierAmount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	rate, err := money.ParsePercent(req.WeeklyReturnPercent)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_rate")
		return
	}
	if req.LockPeriodMonths <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_lock_period")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.packages.SetTier(r.Context(), tx, req.Tier, amountMinor, rate.String(), req.LockPeriodMonths); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"tier": req.Tier,
			"rate": rate.String(),
		})
		return h.audit.Log(r.Context(), tx, actorID, "set_package", "stake_package", req.Tier, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update package")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) AdminDeactivatePackage(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	tier := chi.URLParam(r, "tier")
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.packages.Deactivate(r.Context(), tx, tier); err != nil {
			return err
		}
		return h.audit.Log(r.Context(), tx, actorID, "deactivate_package", "stake_package", tier, "{}")
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to deactivate package")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

type adminCreditRequest struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

func (h *Handler) AdminApproveDeposit(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	var req adminCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	if err := h.service.Deposit(r.Context(), req.UserID, amountMinor, actorID); err != nil {
		if err == services.ErrInvalidAmount {
			respondError(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		respondError(w, http.StatusInternalServerError, "deposit_failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "credited"})
}

func (h *Handler) AdminCreditReferral(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	var req adminCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	if err := h.service.CreditReferral(r.Context(), req.UserID, amountMinor, actorID); err != nil {
		if err == services.ErrInvalidAmount {
			respondError(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		respondError(w, http.StatusInternalServerError, "referral_credit_failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "credited"})
}

func (h *Handler) AdminRunAccrual(w http.ResponseWriter, r *http.Request) {
	processed, failed := h.runner.RunOnce(r.Context())
	respondJSON(w, http.StatusOK, map[string]int{
		"processed": processed,
		"failed":    failed,
	})
}

type promoteRequest struct {
	UserID string `json:"user_id"`
}

func (h *Handler) PromoteAdmin(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	var req promoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.admin.CreateAdmin(r.Context(), tx, req.UserID, false, &actorID); err != nil {
			return err
		}
		return h.audit.Log(r.Context(), tx, actorID, "promote_admin", "admin", req.UserID, "{}")
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to promote admin")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "promoted"})
}

type grantRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (h *Handler) GrantRole(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	var req grantRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.UserID == "" || req.Role == "" {
		respondError(w, http.StatusBadRequest, "user_id and role are required")
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.admin.GrantRole(r.Context(), tx, req.UserID, req.Role); err != nil {
			return err
		}
		return h.audit.Log(r.Context(), tx, actorID, "grant_role", "admin", req.UserID, "{}")
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to grant role")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "granted"})
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 50)
	offset := (page - 1) * limit
	logs, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load audit logs")
		return
	}
	normalized := make([]map[string]any, 0, len(logs))
	for _, entry := range logs {
		actor := ""
		if entry.ActorUserID != nil {
			actor = *entry.ActorUserID
		}
		normalized = append(normalized, map[string]any{
			"id":            entry.ID,
			"actor_user_id": actor,
			"action":        entry.Action,
			"entity_type":   entry.EntityType,
			"entity_id":     entry.EntityID,
			"data":          entry.Data,
			"created_at":    entry.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}
