package handlers

import (
	"net/http"
	"strings"

	"roundup/internal/config"
	"roundup/internal/logger"
	"roundup/internal/metrics"
	"roundup/internal/middleware"
	"roundup/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	cfg          config.Config
	auth         AuthService
	engine       Engine
	transactions TransactionStore
	investments  InvestmentStore
	activity     ActivityStore
	prices       PriceCache
	hub          *websocket.Hub
}

func New(cfg config.Config, auth AuthService, engine Engine, transactions TransactionStore, investments InvestmentStore, activity ActivityStore, hub *websocket.Hub) *Handler {
	return &Handler{
		cfg:          cfg,
		auth:         auth,
		engine:       engine,
		transactions: transactions,
		investments:  investments,
		activity:     activity,
		hub:          hub,
	}
}

// WithPriceCache lets GET /prices/{name} read from the cache before the catalog.
func (h *Handler) WithPriceCache(prices PriceCache) *Handler {
	h.prices = prices
	return h
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(logger.RequestLogger)
	router.Use(metrics.Instrument)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   splitOrigins(h.cfg.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	requireAuth := middleware.Auth(h.cfg.JWTSecret)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(requireAuth).Get("/me", h.Me)
	})
	router.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/pay", h.GetPay)
		r.Post("/pay", h.PostPay)
		r.Get("/wallet", h.GetWallet)
		r.Post("/wallet", h.PostWallet)
		r.Get("/transactions", h.ListTransactions)
		r.Get("/dashboard", h.Dashboard)
		r.Get("/activity", h.ListActivity)
	})
	router.Get("/update_prices", h.UpdatePrices)
	router.Get("/prices", h.ListPrices)
	router.Get("/prices/{name}", h.GetPrice)
	router.Get("/ws/balances", h.WSBalances)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", metrics.Handler())
	return router
}

func splitOrigins(raw string) []string {
	origins := []string{}
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
