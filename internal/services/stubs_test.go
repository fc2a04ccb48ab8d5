package services

import (
	"context"
	"database/sql"
	"sync"

	"roundup/internal/catalog"
	"roundup/internal/config"
	"roundup/internal/models"
	"roundup/internal/store"
	"roundup/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

// memoryLedger implements every store the services need on top of plain maps.
type memoryLedger struct {
	mu           sync.Mutex
	users        map[string]models.User
	transactions []store.TransactionInput
	investments  []store.InvestmentInput
	activity     []store.ActivityInput
}

func newMemoryLedger(users ...models.User) *memoryLedger {
	ledger := &memoryLedger{users: map[string]models.User{}}
	for _, user := range users {
		ledger.users[user.ID] = user
	}
	return ledger
}

func (m *memoryLedger) Create(_ context.Context, _ store.Execer, input store.UserInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[input.ID] = models.User{
		ID:             input.ID,
		Name:           input.Name,
		Email:          input.Email,
		PasswordHash:   input.PasswordHash,
		AccountBalance: input.AccountBalance,
	}
	return nil
}

func (m *memoryLedger) GetByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, sql.ErrNoRows
}

func (m *memoryLedger) GetByID(_ context.Context, userID string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return user, nil
}

func (m *memoryLedger) GetForUpdate(ctx context.Context, _ store.Getter, userID string) (models.User, error) {
	return m.GetByID(ctx, userID)
}

func (m *memoryLedger) UpdateBalances(_ context.Context, _ store.Execer, userID string, accountBalance, walletBalance float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return sql.ErrNoRows
	}
	user.AccountBalance = accountBalance
	user.WalletBalance = walletBalance
	m.users[userID] = user
	return nil
}

func (m *memoryLedger) user(userID string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[userID]
}

type memoryTransactions struct{ *memoryLedger }

func (m memoryTransactions) Create(_ context.Context, _ store.Execer, input store.TransactionInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append(m.transactions, input)
	return nil
}

type memoryInvestments struct{ *memoryLedger }

func (m memoryInvestments) Create(_ context.Context, _ store.Execer, input store.InvestmentInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.investments = append(m.investments, input)
	return nil
}

func (m memoryInvestments) SyncProfitLoss(_ context.Context, _ store.Execer, stockName string, profitLoss float64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated int64
	for i := range m.investments {
		if m.investments[i].StockName == stockName {
			m.investments[i].ProfitLoss = profitLoss
			updated++
		}
	}
	return updated, nil
}

type memoryActivity struct{ *memoryLedger }

func (m memoryActivity) Record(_ context.Context, _ store.Execer, input store.ActivityInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activity = append(m.activity, input)
	return nil
}

func (m *memoryLedger) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]string, 0, len(m.activity))
	for _, entry := range m.activity {
		actions = append(actions, entry.Action)
	}
	return actions
}

type stubUserStore struct {
	createFn       func(ctx context.Context, tx store.Execer, input store.UserInput) error
	getByEmailFn   func(ctx context.Context, email string) (models.User, error)
	getByIDFn      func(ctx context.Context, userID string) (models.User, error)
	getForUpdateFn func(ctx context.Context, tx store.Getter, userID string) (models.User, error)
	updateFn       func(ctx context.Context, tx store.Execer, userID string, accountBalance, walletBalance float64) error
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, input store.UserInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.User, error) {
	return s.getForUpdateFn(ctx, tx, userID)
}

func (s stubUserStore) UpdateBalances(ctx context.Context, tx store.Execer, userID string, accountBalance, walletBalance float64) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, userID, accountBalance, walletBalance)
}

type stubInvestmentStore struct {
	createFn func(ctx context.Context, tx store.Execer, input store.InvestmentInput) error
	syncFn   func(ctx context.Context, tx store.Execer, stockName string, profitLoss float64) (int64, error)
}

func (s stubInvestmentStore) Create(ctx context.Context, tx store.Execer, input store.InvestmentInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubInvestmentStore) SyncProfitLoss(ctx context.Context, tx store.Execer, stockName string, profitLoss float64) (int64, error) {
	if s.syncFn == nil {
		return 0, nil
	}
	return s.syncFn(ctx, tx, stockName, profitLoss)
}

type stubHub struct {
	mu       sync.Mutex
	balances []websocket.BalanceUpdate
	catalogs [][]models.Stock
}

func (s *stubHub) BroadcastBalance(_ string, update websocket.BalanceUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances = append(s.balances, update)
}

func (s *stubHub) BroadcastCatalog(stocks []models.Stock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalogs = append(s.catalogs, stocks)
}

type stubPublisher struct {
	calls int
	err   error
}

func (s *stubPublisher) PublishCatalog(context.Context, []models.Stock) error {
	s.calls++
	return s.err
}

// fixedRand always picks index pick and draws float for every tick.
type fixedRand struct {
	pick  int
	float float64
}

func (f fixedRand) Intn(n int) int {
	return f.pick % n
}

func (f fixedRand) Float64() float64 {
	return f.float
}

func newTestCatalog(rng catalog.Rand) *catalog.Catalog {
	c, err := catalog.New(catalog.Default(), rng, 20)
	if err != nil {
		panic(err)
	}
	return c
}

func newTestService(ledger *memoryLedger, rng catalog.Rand, hub *stubHub) *RoundUpService {
	return NewRoundUpService(
		fakeTxRunner{},
		ledger,
		memoryTransactions{ledger},
		memoryInvestments{ledger},
		memoryActivity{ledger},
		newTestCatalog(rng),
		hub,
		config.DefaultEngineConfig(),
	)
}
