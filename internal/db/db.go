package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"roundup/internal/logger"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const maxAttempts = 5

var ErrRetryLimit = errors.New("transaction retry limit exceeded")

type TxRunner interface {
	WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error
}

type SQLXTxRunner struct {
	db *sqlx.DB
}

func NewTxRunner(db *sqlx.DB) SQLXTxRunner {
	return SQLXTxRunner{db: db}
}

func (r SQLXTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	return WithTx(ctx, r.db, fn)
}

type PoolConfig struct {
	MaxOpenConns int
	MaxIdleConns int
}

func Connect(databaseURL string, pool PoolConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	if pool.MaxOpenConns <= 0 {
		pool.MaxOpenConns = 30
	}
	if pool.MaxIdleConns <= 0 {
		pool.MaxIdleConns = 5
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// WithTx runs fn in a serializable transaction. Serialization failures and deadlocks are
// retried with quadratic backoff; every other error rolls back and is returned as-is. When
// every attempt conflicts the last error is wrapped in ErrRetryLimit.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = runTx(ctx, db, fn)
		if err == nil || !isRetryablePGError(err) {
			return err
		}
		if attempt == maxAttempts {
			break
		}
		if waitErr := backoff(ctx, attempt); waitErr != nil {
			return waitErr
		}
	}
	return fmt.Errorf("%w: %w", ErrRetryLimit, err)
}

func runTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func isRetryablePGError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}

// IsUniqueViolation reports whether err is a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func backoff(ctx context.Context, attempt int) error {
	base := 20 * time.Millisecond
	wait := time.Duration(attempt*attempt)*base + time.Duration(rand.Int63n(int64(10*time.Millisecond)))
	logger.WithField("attempt", attempt).Debugf("serialization conflict, retrying in %s", wait)
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
