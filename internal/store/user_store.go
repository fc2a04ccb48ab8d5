package store

import (
	"context"

	"roundup/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

type UserInput struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	AccountBalance float64
}

const userColumns = `id, name, email, password_hash, account_balance, wallet_balance, created_at`

func (s *UserStore) Create(ctx context.Context, tx Execer, input UserInput) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, account_balance, wallet_balance)
		VALUES ($1, $2, $3, $4, $5, 0)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.Name, input.Email, input.PasswordHash, input.AccountBalance)
	return err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		return models.User{}, err
	}
	return row, nil
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	if err != nil {
		return models.User{}, err
	}
	return row, nil
}

// GetForUpdate reads the user inside tx and holds the row lock until commit.
func (s *UserStore) GetForUpdate(ctx context.Context, tx Getter, userID string) (models.User, error) {
	var row models.User
	err := tx.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID)
	if err != nil {
		return models.User{}, err
	}
	return row, nil
}

func (s *UserStore) UpdateBalances(ctx context.Context, tx Execer, userID string, accountBalance, walletBalance float64) error {
	return expectOneRow(tx.ExecContext(ctx, `
		UPDATE users
		SET account_balance = $1, wallet_balance = $2, updated_at = NOW()
		WHERE id = $3
	`, accountBalance, walletBalance, userID))
}
