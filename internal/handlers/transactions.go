package handlers

import (
	"net/http"

	"roundup/internal/models"
)

const dashboardTransactions = 20

var transactionTypes = map[string]struct{}{
	models.TransactionPayment:       {},
	models.TransactionDeposit:       {},
	models.TransactionWalletDeposit: {},
	models.TransactionInvestment:    {},
}

// ListTransactions returns the caller's transactions, newest first.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	txType := r.URL.Query().Get("type")
	if txType != "" {
		if _, known := transactionTypes[txType]; !known {
			respondError(w, http.StatusBadRequest, "invalid_type")
			return
		}
	}
	limit, offset := pagination(r, 20)
	transactions, err := h.transactions.ListByUser(r.Context(), userID, txType, limit, offset)
	if err != nil {
		respondServiceError(w, r, err, "unable_to_load_transactions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"transactions": transactions,
		"limit":        limit,
		"offset":       offset,
	})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	user, err := h.auth.Profile(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "unable_to_load_user")
		return
	}
	investments, err := h.investments.ListByUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "unable_to_load_investments")
		return
	}
	transactions, err := h.transactions.ListByUser(r.Context(), userID, "", dashboardTransactions, 0)
	if err != nil {
		respondServiceError(w, r, err, "unable_to_load_transactions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"name":         user.Name,
		"stocks":       h.engine.Catalog(),
		"investments":  investments,
		"transactions": transactions,
	})
}
