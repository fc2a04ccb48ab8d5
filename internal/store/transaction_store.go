package store

import (
	"context"
	"strconv"

	"roundup/internal/models"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

type TransactionInput struct {
	ID     string
	UserID string
	Type   string
	Amount float64
}

func (s *TransactionStore) Create(ctx context.Context, tx Execer, input TransactionInput) error {
	query := `
		INSERT INTO transactions (id, user_id, type, amount)
		VALUES ($1, $2, $3, $4)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.UserID, input.Type, input.Amount)
	return err
}

// ListByUser returns the user's transactions newest first. Rows written in the same database
// transaction share no timestamp guarantee, so seq breaks ties in insertion order.
func (s *TransactionStore) ListByUser(ctx context.Context, userID, txType string, limit, offset int) ([]models.Transaction, error) {
	rows := []models.Transaction{}
	query := `
		SELECT id, user_id, type, amount, created_at
		FROM transactions
		WHERE user_id = $1
	`
	args := []any{userID}
	param := 2
	if txType != "" {
		query += " AND type = $2"
		args = append(args, txType)
		param = 3
	}
	query += " ORDER BY created_at DESC, seq DESC LIMIT $" + strconv.Itoa(param) + " OFFSET $" + strconv.Itoa(param+1)
	args = append(args, limit, offset)
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
