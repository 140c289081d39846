package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"staking/internal/money"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// parseAmountMinor parses a positive user-supplied amount string.
func parseAmountMinor(raw string) (int64, error) {
	minor, err := money.ParseMinor(raw)
	if err != nil {
		return 0, err
	}
	if minor <= 0 {
		return 0, money.ErrInvalidAmount
	}
	return minor, nil
}

func parseInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
