package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"roundup/internal/auth"
	"roundup/internal/config"
	"roundup/internal/models"
	"roundup/internal/services"
	"roundup/internal/websocket"
)

const testSecret = "handler-secret"

type stubAuthService struct {
	signupFn  func(ctx context.Context, req services.SignupRequest) (services.Session, error)
	loginFn   func(ctx context.Context, req services.LoginRequest) (services.Session, error)
	profileFn func(ctx context.Context, userID string) (models.User, error)
}

func (s stubAuthService) Signup(ctx context.Context, req services.SignupRequest) (services.Session, error) {
	return s.signupFn(ctx, req)
}

func (s stubAuthService) Login(ctx context.Context, req services.LoginRequest) (services.Session, error) {
	return s.loginFn(ctx, req)
}

func (s stubAuthService) Profile(ctx context.Context, userID string) (models.User, error) {
	if s.profileFn == nil {
		return models.User{ID: userID}, nil
	}
	return s.profileFn(ctx, userID)
}

func (s stubAuthService) TokenTTL() time.Duration {
	return time.Hour
}

type stubEngine struct {
	payFn     func(ctx context.Context, userID string, amount float64) (services.PaymentResult, error)
	depositFn func(ctx context.Context, userID string, amount float64) (services.DepositResult, error)
	topUpFn   func(ctx context.Context, userID string, amount float64) (services.WalletTopUpResult, error)
	tickFn    func(ctx context.Context) ([]models.Stock, error)
	stocks    []models.Stock
}

func (s stubEngine) Pay(ctx context.Context, userID string, amount float64) (services.PaymentResult, error) {
	return s.payFn(ctx, userID, amount)
}

func (s stubEngine) Deposit(ctx context.Context, userID string, amount float64) (services.DepositResult, error) {
	return s.depositFn(ctx, userID, amount)
}

func (s stubEngine) TopUpWallet(ctx context.Context, userID string, amount float64) (services.WalletTopUpResult, error) {
	return s.topUpFn(ctx, userID, amount)
}

func (s stubEngine) TickPrices(ctx context.Context) ([]models.Stock, error) {
	return s.tickFn(ctx)
}

func (s stubEngine) Catalog() []models.Stock {
	return s.stocks
}

func (s stubEngine) Stock(name string) (models.Stock, bool) {
	for _, stock := range s.stocks {
		if stock.Name == name {
			return stock, true
		}
	}
	return models.Stock{}, false
}

type stubTransactionStore struct {
	listFn func(ctx context.Context, userID, txType string, limit, offset int) ([]models.Transaction, error)
}

func (s stubTransactionStore) ListByUser(ctx context.Context, userID, txType string, limit, offset int) ([]models.Transaction, error) {
	if s.listFn == nil {
		return []models.Transaction{}, nil
	}
	return s.listFn(ctx, userID, txType, limit, offset)
}

type stubInvestmentStore struct {
	listFn func(ctx context.Context, userID string) ([]models.Investment, error)
}

func (s stubInvestmentStore) ListByUser(ctx context.Context, userID string) ([]models.Investment, error) {
	if s.listFn == nil {
		return []models.Investment{}, nil
	}
	return s.listFn(ctx, userID)
}

type stubActivityStore struct {
	listFn func(ctx context.Context, userID string, limit, offset int) ([]models.Activity, error)
}

func (s stubActivityStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Activity, error) {
	if s.listFn == nil {
		return []models.Activity{}, nil
	}
	return s.listFn(ctx, userID, limit, offset)
}

type stubPriceCache struct {
	priceFn func(ctx context.Context, name string) (float64, error)
}

func (s stubPriceCache) Price(ctx context.Context, name string) (float64, error) {
	return s.priceFn(ctx, name)
}

type handlerDeps struct {
	auth         AuthService
	engine       Engine
	transactions TransactionStore
	investments  InvestmentStore
	activity     ActivityStore
}

func newTestHandler(deps handlerDeps) *Handler {
	if deps.auth == nil {
		deps.auth = stubAuthService{}
	}
	if deps.engine == nil {
		deps.engine = stubEngine{}
	}
	if deps.transactions == nil {
		deps.transactions = stubTransactionStore{}
	}
	if deps.investments == nil {
		deps.investments = stubInvestmentStore{}
	}
	if deps.activity == nil {
		deps.activity = stubActivityStore{}
	}
	cfg := config.Config{JWTSecret: testSecret, AllowedOrigins: "*"}
	return New(cfg, deps.auth, deps.engine, deps.transactions, deps.investments, deps.activity, websocket.NewHub())
}

func serve(t *testing.T, h *Handler, method, path, body, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		token, err := auth.GenerateToken(testSecret, userID, time.Minute)
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.Routes().ServeHTTP(rr, req)
	return rr
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"error":"`+code+`"`) {
		t.Fatalf("expected error %q, got %s", code, rr.Body.String())
	}
}

