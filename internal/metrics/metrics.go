// Package metrics holds the Prometheus collectors for the round-up engine and the HTTP layer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var Payments = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "roundup_payments_total",
	Help: "Round-up payments by outcome (ok, insufficient_funds, invalid_amount, error).",
}, []string{"result"})

var Deposits = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "roundup_deposits_total",
	Help: "Account deposits by outcome (ok, ignored, error).",
}, []string{"result"})

var WalletTopUps = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "roundup_wallet_topups_total",
	Help: "Wallet top-ups by outcome (ok, invalid_amount, error).",
}, []string{"result"})

var SpareChange = promauto.NewCounter(prometheus.CounterOpts{
	Name: "roundup_spare_change_total",
	Help: "Currency units moved into wallets by payment round-ups.",
})

var AutoInvestments = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "roundup_auto_investments_total",
	Help: "Auto-investments triggered, by stock.",
}, []string{"stock"})

var AmountInvested = promauto.NewCounter(prometheus.CounterOpts{
	Name: "roundup_invested_amount_total",
	Help: "Currency units swept from wallets into investments.",
})

var PriceTicks = promauto.NewCounter(prometheus.CounterOpts{
	Name: "roundup_price_ticks_total",
	Help: "Price simulation ticks applied.",
})

var StockPrice = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "roundup_stock_price",
	Help: "Current simulated price per catalog stock.",
}, []string{"stock"})

var StockProfitLoss = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "roundup_stock_profit_loss_percent",
	Help: "Current simulated profit/loss percentage per catalog stock.",
}, []string{"stock"})

var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "roundup_http_request_duration_seconds",
	Help:    "HTTP request latency by route pattern, method and status.",
	Buckets: prometheus.DefBuckets,
}, []string{"route", "method", "status"})

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records request latency keyed by the chi route pattern so path parameters do not
// explode label cardinality.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPDuration.WithLabelValues(route, r.Method, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
