package handlers

import (
	"net/http"

	"roundup/internal/money"
)

type walletRequest struct {
	WalletAmount amountField `json:"wallet_amount"`
}

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	user, err := h.auth.Profile(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "unable_to_load_user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"name":           user.Name,
		"wallet_balance": money.Round2(user.WalletBalance),
	})
}

func (h *Handler) PostWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req walletRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if !req.WalletAmount.Set() {
		respondError(w, http.StatusBadRequest, "amount_required")
		return
	}
	amount, err := req.WalletAmount.Float()
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	result, err := h.engine.TopUpWallet(r.Context(), userID, amount)
	if err != nil {
		respondServiceError(w, r, err, "wallet_top_up_failed")
		return
	}
	respondJSON(w, http.StatusOK, result)
}
