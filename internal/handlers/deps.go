package handlers

import (
	"context"
	"time"

	"roundup/internal/models"
	"roundup/internal/services"
)

type AuthService interface {
	Signup(ctx context.Context, req services.SignupRequest) (services.Session, error)
	Login(ctx context.Context, req services.LoginRequest) (services.Session, error)
	Profile(ctx context.Context, userID string) (models.User, error)
	TokenTTL() time.Duration
}

type Engine interface {
	Pay(ctx context.Context, userID string, amount float64) (services.PaymentResult, error)
	Deposit(ctx context.Context, userID string, amount float64) (services.DepositResult, error)
	TopUpWallet(ctx context.Context, userID string, amount float64) (services.WalletTopUpResult, error)
	TickPrices(ctx context.Context) ([]models.Stock, error)
	Catalog() []models.Stock
	Stock(name string) (models.Stock, bool)
}

type TransactionStore interface {
	ListByUser(ctx context.Context, userID, txType string, limit, offset int) ([]models.Transaction, error)
}

type InvestmentStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Investment, error)
}

type ActivityStore interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Activity, error)
}

type PriceCache interface {
	Price(ctx context.Context, name string) (float64, error)
}
