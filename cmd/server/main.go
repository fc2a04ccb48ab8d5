package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roundup/internal/cache"
	"roundup/internal/catalog"
	"roundup/internal/config"
	"roundup/internal/db"
	"roundup/internal/handlers"
	"roundup/internal/logger"
	"roundup/internal/services"
	"roundup/internal/store"
	"roundup/internal/websocket"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger.Configure(cfg.LogLevel, cfg.AppEnv)

	database, err := db.Connect(cfg.DatabaseURL, db.PoolConfig{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		logger.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	stocks := catalog.Default()
	if cfg.CatalogFile != "" {
		stocks, err = catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			logger.Fatalf("failed to load catalog: %v", err)
		}
	}
	market, err := catalog.New(stocks, nil, cfg.Engine.PriceCap)
	if err != nil {
		logger.Fatalf("invalid catalog: %v", err)
	}

	users := store.NewUserStore(database)
	transactions := store.NewTransactionStore(database)
	investments := store.NewInvestmentStore(database)
	activity := store.NewActivityStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	engine := services.NewRoundUpService(txRunner, users, transactions, investments, activity, market, hub, cfg.Engine)
	authService := services.NewAuthService(txRunner, users, activity, cfg.JWTSecret, cfg.TokenTTL, cfg.Engine.OpeningBalance)
	handler := handlers.New(cfg, authService, engine, transactions, investments, activity, hub)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatalf("failed to connect redis: %v", err)
		}
		defer rdb.Close()
		catalogCache := cache.NewCatalogCache(rdb, cfg.PriceCacheTTL)
		if err := catalogCache.PublishCatalog(ctx, market.Snapshot()); err != nil {
			logger.Warnf("initial catalog publish failed: %v", err)
		}
		engine.WithPublisher(catalogCache)
		handler.WithPriceCache(catalogCache)
		logger.Infof("catalog cache enabled")
	}

	if cfg.Engine.TickInterval > 0 {
		go engine.RunPriceTicker(ctx, cfg.Engine.TickInterval)
		logger.Infof("price ticker running every %s", cfg.Engine.TickInterval)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     stdlog.New(logger.L().WriterLevel(logrus.ErrorLevel), "", 0),
	}

	go func() {
		logger.Infof("round-up API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown error: %v", err)
		os.Exit(1)
	}
	logger.Infof("server stopped")
}
