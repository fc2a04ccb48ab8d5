package handlers

import (
	"net/http"

	"roundup/internal/money"
)

// payRequest carries either a payment or a deposit. When both are present the payment wins.
type payRequest struct {
	PaymentAmount amountField `json:"payment_amount"`
	DepositAmount amountField `json:"deposit_amount"`
}

func (h *Handler) GetPay(w http.ResponseWriter, r *http.Request) {
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
		"name":            user.Name,
		"account_balance": money.Round2(user.AccountBalance),
	})
}

func (h *Handler) PostPay(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req payRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	switch {
	case req.PaymentAmount.Set():
		amount, err := req.PaymentAmount.Float()
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		result, err := h.engine.Pay(r.Context(), userID, amount)
		if err != nil {
			respondServiceError(w, r, err, "payment_failed")
			return
		}
		respondJSON(w, http.StatusOK, result)
	case req.DepositAmount.Set():
		amount, err := req.DepositAmount.Float()
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		result, err := h.engine.Deposit(r.Context(), userID, amount)
		if err != nil {
			respondServiceError(w, r, err, "deposit_failed")
			return
		}
		respondJSON(w, http.StatusOK, result)
	default:
		respondError(w, http.StatusBadRequest, "amount_required")
	}
}
