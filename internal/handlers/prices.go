package handlers

import (
	"errors"
	"net/http"

	"roundup/internal/cache"
	"roundup/internal/logger"
	"roundup/internal/services"

	"github.com/go-chi/chi/v5"
)

// UpdatePrices runs one simulation tick and returns the new catalog. A tick whose investment
// sync failed still answers with the catalog that was applied.
func (h *Handler) UpdatePrices(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.engine.TickPrices(r.Context())
	if errors.Is(err, services.ErrInvestmentSync) && stocks != nil {
		logger.Warnf("prices ticked without investment sync: %v", err)
		respondJSON(w, http.StatusOK, stocks)
		return
	}
	if err != nil {
		respondServiceError(w, r, err, "price_update_failed")
		return
	}
	respondJSON(w, http.StatusOK, stocks)
}

func (h *Handler) ListPrices(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Catalog())
}

// GetPrice serves the cached price when Redis has one and falls back to the live catalog.
// Names the catalog does not know are rejected even if a stale cache key survives.
func (h *Handler) GetPrice(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	stock, ok := h.engine.Stock(name)
	if !ok {
		respondError(w, http.StatusNotFound, "stock_not_found")
		return
	}
	if h.prices != nil {
		price, err := h.prices.Price(r.Context(), name)
		if err == nil {
			respondJSON(w, http.StatusOK, map[string]any{"name": name, "price": price, "source": "cache"})
			return
		}
		if !errors.Is(err, cache.ErrPriceNotCached) {
			logger.Warnf("price cache lookup %s: %v", name, err)
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"name": name, "price": stock.Price, "source": "catalog"})
}
