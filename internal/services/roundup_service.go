package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"roundup/internal/config"
	"roundup/internal/db"
	"roundup/internal/logger"
	"roundup/internal/metrics"
	"roundup/internal/models"
	"roundup/internal/money"
	"roundup/internal/store"
	"roundup/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUser     = errors.New("user already exists")
	ErrAuthentication    = errors.New("invalid credentials")
	// ErrInvestmentSync means the catalog ticked but positions still carry the previous
	// profit/loss. The next successful tick brings them back in line.
	ErrInvestmentSync = errors.New("investment sync failed")
)

// RoundUpService applies every balance-changing operation. Each call runs in one database
// transaction with the user's row locked, so concurrent requests for a user serialize.
type RoundUpService struct {
	txRunner     db.TxRunner
	users        UserStore
	transactions TransactionStore
	investments  InvestmentStore
	activity     ActivityStore
	catalog      Catalog
	hub          Hub
	publisher    CatalogPublisher
	cfg          config.EngineConfig
	newID        func() string

	tickMu sync.Mutex
}

func NewRoundUpService(txRunner db.TxRunner, users UserStore, transactions TransactionStore, investments InvestmentStore, activity ActivityStore, catalog Catalog, hub Hub, cfg config.EngineConfig) *RoundUpService {
	defaults := config.DefaultEngineConfig()
	if cfg.AutoInvestThreshold <= 0 {
		cfg.AutoInvestThreshold = defaults.AutoInvestThreshold
	}
	return &RoundUpService{
		txRunner:     txRunner,
		users:        users,
		transactions: transactions,
		investments:  investments,
		activity:     activity,
		catalog:      catalog,
		hub:          hub,
		cfg:          cfg,
		newID:        uuid.NewString,
	}
}

// WithPublisher mirrors the catalog to p after every tick.
func (s *RoundUpService) WithPublisher(p CatalogPublisher) *RoundUpService {
	s.publisher = p
	return s
}

type PaymentResult struct {
	TransactionID  string  `json:"transaction_id"`
	Amount         float64 `json:"amount"`
	Charge         float64 `json:"charge"`
	RoundUp        float64 `json:"round_up"`
	AccountBalance float64 `json:"account_balance"`
	WalletBalance  float64 `json:"wallet_balance"`
}

type DepositResult struct {
	Applied        bool    `json:"applied"`
	TransactionID  string  `json:"transaction_id,omitempty"`
	Amount         float64 `json:"amount"`
	AccountBalance float64 `json:"account_balance"`
}

type InvestmentResult struct {
	InvestmentID  string  `json:"investment_id"`
	TransactionID string  `json:"transaction_id"`
	StockName     string  `json:"stock_name"`
	Amount        float64 `json:"amount"`
	ProfitLoss    float64 `json:"profit_loss"`
}

type WalletTopUpResult struct {
	TransactionID string            `json:"transaction_id"`
	Amount        float64           `json:"amount"`
	WalletBalance float64           `json:"wallet_balance"`
	Investment    *InvestmentResult `json:"investment,omitempty"`
}

// Pay charges the next whole unit above amount and moves the difference into the wallet.
func (s *RoundUpService) Pay(ctx context.Context, userID string, amount float64) (PaymentResult, error) {
	if !money.IsPositive(amount) {
		metrics.Payments.WithLabelValues("invalid_amount").Inc()
		return PaymentResult{}, ErrInvalidAmount
	}
	charge, increment := money.RoundUp(amount)
	var result PaymentResult
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		user, err := s.lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if charge > user.AccountBalance {
			return ErrInsufficientFunds
		}
		account := money.Round2(user.AccountBalance - charge)
		wallet := money.Round2(user.WalletBalance + increment)
		if err := s.users.UpdateBalances(ctx, tx, userID, account, wallet); err != nil {
			return fmt.Errorf("update balances: %w", err)
		}
		transactionID := s.newID()
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:     transactionID,
			UserID: userID,
			Type:   models.TransactionPayment,
			Amount: charge,
		}); err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
		result = PaymentResult{
			TransactionID:  transactionID,
			Amount:         amount,
			Charge:         charge,
			RoundUp:        increment,
			AccountBalance: account,
			WalletBalance:  wallet,
		}
		return s.recordActivity(ctx, tx, userID, models.ActivityPayment, "transaction", transactionID, models.ActivityDetails{
			Amount:  money.Format(amount),
			Charge:  money.Format(charge),
			RoundUp: money.Format(increment),
		})
	})
	if err != nil {
		metrics.Payments.WithLabelValues(resultLabel(err)).Inc()
		return PaymentResult{}, err
	}
	metrics.Payments.WithLabelValues("ok").Inc()
	metrics.SpareChange.Add(increment)
	s.broadcastBalance(userID, result.AccountBalance, result.WalletBalance)
	return result, nil
}

// Deposit credits the account with amount rounded to cents, so the recorded Deposit always
// equals the balance change. Amounts that round to zero or below are ignored without error.
func (s *RoundUpService) Deposit(ctx context.Context, userID string, amount float64) (DepositResult, error) {
	if !money.IsFinite(amount) {
		metrics.Deposits.WithLabelValues("invalid_amount").Inc()
		return DepositResult{}, ErrInvalidAmount
	}
	amount = money.Round2(amount)
	if amount <= 0 {
		metrics.Deposits.WithLabelValues("ignored").Inc()
		return DepositResult{Applied: false, Amount: amount}, nil
	}
	var result DepositResult
	var wallet float64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		user, err := s.lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		account := money.Round2(user.AccountBalance + amount)
		wallet = user.WalletBalance
		if err := s.users.UpdateBalances(ctx, tx, userID, account, wallet); err != nil {
			return fmt.Errorf("update balances: %w", err)
		}
		transactionID := s.newID()
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:     transactionID,
			UserID: userID,
			Type:   models.TransactionDeposit,
			Amount: amount,
		}); err != nil {
			return fmt.Errorf("record deposit: %w", err)
		}
		result = DepositResult{Applied: true, TransactionID: transactionID, Amount: amount, AccountBalance: account}
		return s.recordActivity(ctx, tx, userID, models.ActivityDeposit, "transaction", transactionID, models.ActivityDetails{
			Amount: money.Format(amount),
		})
	})
	if err != nil {
		metrics.Deposits.WithLabelValues(resultLabel(err)).Inc()
		return DepositResult{}, err
	}
	metrics.Deposits.WithLabelValues("ok").Inc()
	s.broadcastBalance(userID, result.AccountBalance, wallet)
	return result, nil
}

// TopUpWallet adds amount (rounded to cents) to the wallet and, in the same transaction,
// sweeps the wallet into a random stock once it reaches the auto-invest threshold.
func (s *RoundUpService) TopUpWallet(ctx context.Context, userID string, amount float64) (WalletTopUpResult, error) {
	amount = money.Round2(amount)
	if !money.IsPositive(amount) {
		metrics.WalletTopUps.WithLabelValues("invalid_amount").Inc()
		return WalletTopUpResult{}, ErrInvalidAmount
	}
	var result WalletTopUpResult
	var account float64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		user, err := s.lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		account = user.AccountBalance
		wallet := money.Round2(user.WalletBalance + amount)
		transactionID := s.newID()
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:     transactionID,
			UserID: userID,
			Type:   models.TransactionWalletDeposit,
			Amount: amount,
		}); err != nil {
			return fmt.Errorf("record wallet deposit: %w", err)
		}
		result = WalletTopUpResult{TransactionID: transactionID, Amount: amount}
		if err := s.recordActivity(ctx, tx, userID, models.ActivityWalletTopUp, "transaction", transactionID, models.ActivityDetails{
			Amount: money.Format(amount),
		}); err != nil {
			return err
		}
		investment, err := s.autoInvest(ctx, tx, userID, wallet)
		if err != nil {
			return err
		}
		if investment != nil {
			wallet = 0
		}
		result.Investment = investment
		result.WalletBalance = wallet
		return s.users.UpdateBalances(ctx, tx, userID, account, wallet)
	})
	if err != nil {
		metrics.WalletTopUps.WithLabelValues(resultLabel(err)).Inc()
		return WalletTopUpResult{}, err
	}
	metrics.WalletTopUps.WithLabelValues("ok").Inc()
	if result.Investment != nil {
		metrics.AutoInvestments.WithLabelValues(result.Investment.StockName).Inc()
		metrics.AmountInvested.Add(result.Investment.Amount)
		logger.WithFields(logrus.Fields{
			"user_id": userID,
			"stock":   result.Investment.StockName,
			"amount":  money.Format(result.Investment.Amount),
		}).Info("wallet auto-invested")
	}
	s.broadcastBalance(userID, account, result.WalletBalance)
	return result, nil
}

// autoInvest returns nil when wallet is below the threshold. The caller persists the zeroed
// wallet.
func (s *RoundUpService) autoInvest(ctx context.Context, tx store.Execer, userID string, wallet float64) (*InvestmentResult, error) {
	if wallet < s.cfg.AutoInvestThreshold {
		return nil, nil
	}
	stock, err := s.catalog.Pick()
	if err != nil {
		return nil, fmt.Errorf("pick stock: %w", err)
	}
	transactionID := s.newID()
	if err := s.transactions.Create(ctx, tx, store.TransactionInput{
		ID:     transactionID,
		UserID: userID,
		Type:   models.TransactionInvestment,
		Amount: wallet,
	}); err != nil {
		return nil, fmt.Errorf("record investment transaction: %w", err)
	}
	investmentID := s.newID()
	if err := s.investments.Create(ctx, tx, store.InvestmentInput{
		ID:             investmentID,
		UserID:         userID,
		StockName:      stock.Name,
		InvestedAmount: wallet,
		ProfitLoss:     stock.ProfitLoss,
	}); err != nil {
		return nil, fmt.Errorf("record investment: %w", err)
	}
	if err := s.recordActivity(ctx, tx, userID, models.ActivityAutoInvest, "investment", investmentID, models.ActivityDetails{
		Stock:  stock.Name,
		Amount: money.Format(wallet),
	}); err != nil {
		return nil, err
	}
	return &InvestmentResult{
		InvestmentID:  investmentID,
		TransactionID: transactionID,
		StockName:     stock.Name,
		Amount:        wallet,
		ProfitLoss:    stock.ProfitLoss,
	}, nil
}

// TickPrices advances the simulation one step and copies each stock's profit/loss onto the
// positions held in it. Ticks never overlap. The catalog is always returned once it has moved;
// a failed sync is reported alongside it as ErrInvestmentSync.
func (s *RoundUpService) TickPrices(ctx context.Context) ([]models.Stock, error) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	stocks := s.catalog.Tick()
	var synced int64
	syncErr := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		synced = 0
		for _, stock := range stocks {
			n, err := s.investments.SyncProfitLoss(ctx, tx, stock.Name, stock.ProfitLoss)
			if err != nil {
				return fmt.Errorf("sync %s: %w", stock.Name, err)
			}
			synced += n
		}
		return nil
	})
	metrics.PriceTicks.Inc()
	for _, stock := range stocks {
		metrics.StockPrice.WithLabelValues(stock.Name).Set(stock.Price)
		metrics.StockProfitLoss.WithLabelValues(stock.Name).Set(stock.ProfitLoss)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishCatalog(ctx, stocks); err != nil {
			logger.Warnf("publish catalog: %v", err)
		}
	}
	s.hub.BroadcastCatalog(stocks)
	if syncErr != nil {
		return stocks, fmt.Errorf("%w: %w", ErrInvestmentSync, syncErr)
	}
	logger.WithField("investments", synced).Debug("prices ticked")
	return stocks, nil
}

// RunPriceTicker ticks prices every interval until ctx is cancelled.
func (s *RoundUpService) RunPriceTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.TickPrices(ctx); err != nil && ctx.Err() == nil {
				logger.Errorf("price tick failed: %v", err)
			}
		}
	}
}

func (s *RoundUpService) Catalog() []models.Stock {
	return s.catalog.Snapshot()
}

func (s *RoundUpService) Stock(name string) (models.Stock, bool) {
	return s.catalog.Lookup(name)
}

func (s *RoundUpService) lockUser(ctx context.Context, tx store.Getter, userID string) (models.User, error) {
	user, err := s.users.GetForUpdate(ctx, tx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("lock user: %w", err)
	}
	return user, nil
}

func (s *RoundUpService) recordActivity(ctx context.Context, tx store.Execer, userID, action, entityType, entityID string, details models.ActivityDetails) error {
	return s.activity.Record(ctx, tx, store.ActivityInput{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	})
}

func (s *RoundUpService) broadcastBalance(userID string, account, wallet float64) {
	s.hub.BroadcastBalance(userID, websocket.BalanceUpdate{
		AccountBalance: money.Format(account),
		WalletBalance:  money.Format(wallet),
	})
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	default:
		return "error"
	}
}
