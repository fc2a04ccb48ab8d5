package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"roundup/internal/auth"
	"roundup/internal/db"
	"roundup/internal/models"
	"roundup/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AuthService struct {
	txRunner       db.TxRunner
	users          UserStore
	activity       ActivityStore
	secret         string
	ttl            time.Duration
	openingBalance float64
	newID          func() string
}

func NewAuthService(txRunner db.TxRunner, users UserStore, activity ActivityStore, secret string, ttl time.Duration, openingBalance float64) *AuthService {
	return &AuthService{
		txRunner:       txRunner,
		users:          users,
		activity:       activity,
		secret:         secret,
		ttl:            ttl,
		openingBalance: openingBalance,
		newID:          uuid.NewString,
	}
}

type SignupRequest struct {
	Name      string
	Email     string
	Password  string
	RemoteIP  string
	UserAgent string
}

type LoginRequest struct {
	Email     string
	Password  string
	RemoteIP  string
	UserAgent string
}

type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Signup creates the user with the opening balance already on the account. The opening
// balance is not a Transaction.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (Session, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{
		ID:             s.newID(),
		Name:           strings.TrimSpace(req.Name),
		Email:          normalizeEmail(req.Email),
		AccountBalance: s.openingBalance,
		CreatedAt:      time.Now().UTC(),
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.users.Create(ctx, tx, store.UserInput{
			ID:             user.ID,
			Name:           user.Name,
			Email:          user.Email,
			PasswordHash:   hash,
			AccountBalance: user.AccountBalance,
		}); err != nil {
			return err
		}
		return s.activity.Record(ctx, tx, store.ActivityInput{
			UserID:     user.ID,
			Action:     models.ActivitySignup,
			EntityType: "user",
			EntityID:   user.ID,
			Details:    models.ActivityDetails{IP: req.RemoteIP, UserAgent: req.UserAgent},
		})
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Session{}, ErrDuplicateUser
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrAuthentication
	}
	if err != nil {
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return Session{}, ErrAuthentication
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.activity.Record(ctx, tx, store.ActivityInput{
			UserID:     user.ID,
			Action:     models.ActivityLogin,
			EntityType: "user",
			EntityID:   user.ID,
			Details:    models.ActivityDetails{IP: req.RemoteIP, UserAgent: req.UserAgent},
		})
	})
	if err != nil {
		return Session{}, fmt.Errorf("record login: %w", err)
	}
	return s.issue(user)
}

// Profile loads the user by id, mapping a missing row to ErrUserNotFound.
func (s *AuthService) Profile(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.ttl
}

func (s *AuthService) issue(user models.User) (Session, error) {
	token, err := auth.GenerateToken(s.secret, user.ID, s.ttl)
	if err != nil {
		return Session{}, fmt.Errorf("generate token: %w", err)
	}
	user.PasswordHash = ""
	return Session{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
