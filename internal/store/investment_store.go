package store

import (
	"context"

	"roundup/internal/models"
)

type InvestmentStore struct {
	db DB
}

func NewInvestmentStore(db DB) *InvestmentStore {
	return &InvestmentStore{db: db}
}

type InvestmentInput struct {
	ID             string
	UserID         string
	StockName      string
	InvestedAmount float64
	ProfitLoss     float64
}

func (s *InvestmentStore) Create(ctx context.Context, tx Execer, input InvestmentInput) error {
	query := `
		INSERT INTO investments (id, user_id, stock_name, invested_amount, profit_loss)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.UserID, input.StockName, input.InvestedAmount, input.ProfitLoss)
	return err
}

func (s *InvestmentStore) ListByUser(ctx context.Context, userID string) ([]models.Investment, error) {
	rows := []models.Investment{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, stock_name, invested_amount, profit_loss, created_at
		FROM investments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SyncProfitLoss copies a catalog stock's current profit/loss onto every position in it and
// returns the number of positions touched.
func (s *InvestmentStore) SyncProfitLoss(ctx context.Context, tx Execer, stockName string, profitLoss float64) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE investments
		SET profit_loss = $1
		WHERE stock_name = $2
	`, profitLoss, stockName)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
