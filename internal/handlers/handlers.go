package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"roundup/internal/logger"
	"roundup/internal/middleware"
	"roundup/internal/services"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondInvalid(w http.ResponseWriter, fields map[string]string) {
	respondJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "invalid_request",
		"fields": fields,
	})
}

// respondServiceError maps service sentinels to their status codes. Anything unrecognised is
// logged and reported as fallback with a 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrInsufficientFunds):
		respondError(w, http.StatusBadRequest, "insufficient_funds")
	case errors.Is(err, services.ErrInvalidAmount):
		respondError(w, http.StatusBadRequest, "invalid_amount")
	case errors.Is(err, services.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user_not_found")
	case errors.Is(err, services.ErrDuplicateUser):
		respondError(w, http.StatusConflict, "user_already_exists")
	case errors.Is(err, services.ErrAuthentication):
		respondError(w, http.StatusUnauthorized, "invalid_credentials")
	default:
		logger.WithField("path", r.URL.Path).Errorf("%s: %v", fallback, err)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}

func parseInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func pagination(r *http.Request, defaultLimit int) (limit, offset int) {
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit = parseInt(query.Get("limit"), defaultLimit)
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return limit, (page - 1) * limit
}

const maxPageSize = 100
