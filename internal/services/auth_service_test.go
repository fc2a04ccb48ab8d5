package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"roundup/internal/auth"
	"roundup/internal/models"
	"roundup/internal/store"

	"github.com/lib/pq"
)

const testSecret = "test-secret"

func TestSignupCreditsOpeningBalance(t *testing.T) {
	ledger := newMemoryLedger()
	service := NewAuthService(fakeTxRunner{}, ledger, memoryActivity{ledger}, testSecret, time.Hour, 100)

	session, err := service.Signup(context.Background(), SignupRequest{
		Name:     " Ann ",
		Email:    "Ann@Example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.User.AccountBalance != 100 || session.User.WalletBalance != 0 {
		t.Fatalf("unexpected balances: %#v", session.User)
	}
	if session.User.Email != "ann@example.com" || session.User.Name != "Ann" {
		t.Fatalf("unexpected user: %#v", session.User)
	}
	if session.User.PasswordHash != "" {
		t.Fatal("password hash leaked into session")
	}
	claims, err := auth.ParseToken(testSecret, session.Token)
	if err != nil || claims.UserID != session.User.ID {
		t.Fatalf("unexpected token: %v %#v", err, claims)
	}
	stored := ledger.user(session.User.ID)
	if !auth.CheckPassword(stored.PasswordHash, "password123") {
		t.Fatal("stored hash does not match password")
	}
	if len(ledger.transactions) != 0 {
		t.Fatal("opening balance must not create a transaction")
	}
	if actions := ledger.actions(); len(actions) != 1 || actions[0] != models.ActivitySignup {
		t.Fatalf("unexpected activity: %v", actions)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	users := stubUserStore{
		createFn: func(context.Context, store.Execer, store.UserInput) error {
			return &pq.Error{Code: "23505"}
		},
	}
	service := NewAuthService(fakeTxRunner{}, users, memoryActivity{newMemoryLedger()}, testSecret, time.Hour, 100)
	_, err := service.Signup(context.Background(), SignupRequest{Name: "Ann", Email: "ann@example.com", Password: "password123"})
	if !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	ledger := newMemoryLedger(models.User{ID: "user-1", Email: "ann@example.com", PasswordHash: hash})
	service := NewAuthService(fakeTxRunner{}, ledger, memoryActivity{ledger}, testSecret, time.Hour, 100)

	session, err := service.Login(context.Background(), LoginRequest{Email: "ANN@example.com ", Password: "password123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.User.ID != "user-1" || session.Token == "" {
		t.Fatalf("unexpected session: %#v", session)
	}
	if actions := ledger.actions(); len(actions) != 1 || actions[0] != models.ActivityLogin {
		t.Fatalf("unexpected activity: %v", actions)
	}

	if _, err := service.Login(context.Background(), LoginRequest{Email: "ann@example.com", Password: "wrong"}); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
	if _, err := service.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "password123"}); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestLoginStoreError(t *testing.T) {
	boom := errors.New("db down")
	users := stubUserStore{
		getByEmailFn: func(context.Context, string) (models.User, error) {
			return models.User{}, boom
		},
	}
	service := NewAuthService(fakeTxRunner{}, users, memoryActivity{newMemoryLedger()}, testSecret, time.Hour, 100)
	if _, err := service.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "x"}); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestProfile(t *testing.T) {
	ledger := newMemoryLedger(models.User{ID: "user-1", Name: "Ann", AccountBalance: 42})
	service := NewAuthService(fakeTxRunner{}, ledger, memoryActivity{ledger}, testSecret, time.Hour, 100)

	user, err := service.Profile(context.Background(), "user-1")
	if err != nil || user.AccountBalance != 42 {
		t.Fatalf("unexpected profile: %#v %v", user, err)
	}
	if _, err := service.Profile(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

