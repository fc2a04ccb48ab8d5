package services

import (
	"context"

	"roundup/internal/models"
	"roundup/internal/store"
	"roundup/internal/websocket"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, input store.UserInput) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
	GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.User, error)
	UpdateBalances(ctx context.Context, tx store.Execer, userID string, accountBalance, walletBalance float64) error
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error
}

type InvestmentStore interface {
	Create(ctx context.Context, tx store.Execer, input store.InvestmentInput) error
	SyncProfitLoss(ctx context.Context, tx store.Execer, stockName string, profitLoss float64) (int64, error)
}

type ActivityStore interface {
	Record(ctx context.Context, tx store.Execer, input store.ActivityInput) error
}

type Catalog interface {
	Snapshot() []models.Stock
	Lookup(name string) (models.Stock, bool)
	Pick() (models.Stock, error)
	Tick() []models.Stock
}

type Hub interface {
	BroadcastBalance(userID string, update websocket.BalanceUpdate)
	BroadcastCatalog(stocks []models.Stock)
}

// CatalogPublisher receives the catalog after every tick. Failures are logged, not returned.
type CatalogPublisher interface {
	PublishCatalog(ctx context.Context, stocks []models.Stock) error
}
