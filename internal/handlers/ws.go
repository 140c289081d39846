package handlers

import (
	"net/http"

	"staking/internal/auth"
	"staking/internal/websocket"
)

// WSEvents upgrades to a websocket that receives the owner's ledger
// events. Browsers cannot set headers on websocket requests, so the JWT
// arrives as a query parameter.
func (h *Handler) WSEvents(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}
