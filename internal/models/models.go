package models

import "time"

const (
	TransactionPayment       = "Payment"
	TransactionDeposit       = "Deposit"
	TransactionWalletDeposit = "Wallet Deposit"
	TransactionInvestment    = "Investment"
)

const (
	ActivitySignup      = "signup"
	ActivityLogin       = "login"
	ActivityPayment     = "payment"
	ActivityDeposit     = "deposit"
	ActivityWalletTopUp = "wallet_top_up"
	ActivityAutoInvest  = "auto_invest"
)

type User struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	AccountBalance float64   `db:"account_balance" json:"account_balance"`
	WalletBalance  float64   `db:"wallet_balance" json:"wallet_balance"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Transaction is an append-only log entry. Amount is always the positive magnitude; Type
// carries the direction.
type Transaction struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Type      string    `db:"type" json:"type"`
	Amount    float64   `db:"amount" json:"amount"`
	CreatedAt time.Time `db:"created_at" json:"date"`
}

type Investment struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	StockName      string    `db:"stock_name" json:"stock_name"`
	InvestedAmount float64   `db:"invested_amount" json:"invested_amount"`
	ProfitLoss     float64   `db:"profit_loss" json:"profit_loss"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type Stock struct {
	Name       string  `json:"name" toml:"name"`
	Price      float64 `json:"price" toml:"price"`
	ProfitLoss float64 `json:"profit_loss" toml:"profit_loss"`
}

// ActivityDetails is the JSON document kept with each activity entry. Amounts are fixed
// two-decimal strings; only the fields relevant to the action are set.
type ActivityDetails struct {
	Amount    string `json:"amount,omitempty"`
	Charge    string `json:"charge,omitempty"`
	RoundUp   string `json:"round_up,omitempty"`
	Stock     string `json:"stock,omitempty"`
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

type Activity struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Details    ActivityDetails `json:"details"`
	CreatedAt  time.Time       `json:"created_at"`
}
