package handlers

import (
	"net/http"
	"time"

	"roundup/internal/middleware"
	"roundup/internal/money"
	"roundup/internal/services"
)

type signupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	session, err := h.auth.Signup(r.Context(), services.SignupRequest{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		RemoteIP:  r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		respondServiceError(w, r, err, "registration_failed")
		return
	}
	h.setSessionCookie(w, session.Token, h.auth.TokenTTL())
	respondJSON(w, http.StatusCreated, session)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	session, err := h.auth.Login(r.Context(), services.LoginRequest{
		Email:     req.Email,
		Password:  req.Password,
		RemoteIP:  r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		respondServiceError(w, r, err, "login_failed")
		return
	}
	h.setSessionCookie(w, session.Token, h.auth.TokenTTL())
	respondJSON(w, http.StatusOK, session)
}

// Logout drops the session cookie. Issued tokens stay valid until they expire.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setSessionCookie(w, "", -time.Second)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
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
		"id":              user.ID,
		"name":            user.Name,
		"email":           user.Email,
		"account_balance": money.Round2(user.AccountBalance),
		"wallet_balance":  money.Round2(user.WalletBalance),
		"created_at":      user.CreatedAt,
	})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	cookie := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		cookie.MaxAge = -1
	} else {
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, cookie)
}
