package handlers

import (
	"net/http"

	"roundup/internal/auth"
	"roundup/internal/middleware"
	"roundup/internal/websocket"
)

// WSBalances authenticates from the token query parameter, since browsers cannot set headers
// on a websocket handshake, then falls back to the header or session cookie.
func (h *Handler) WSBalances(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token, _ = middleware.TokenFromRequest(r)
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid_token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}
