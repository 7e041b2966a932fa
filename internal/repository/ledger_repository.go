package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/akylbek/transvoucher-go/internal/models"
)

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS settlement_balances (
			currency VARCHAR(10) PRIMARY KEY,
			balance DECIMAL(20,8) NOT NULL DEFAULT 0,
			entries BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS settlement_entries (
			id BIGSERIAL PRIMARY KEY,
			transaction_id VARCHAR(255) NOT NULL UNIQUE,
			currency VARCHAR(10) NOT NULL,
			amount DECIMAL(20,8) NOT NULL,
			balance DECIMAL(20,8) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_settlement_entries_currency ON settlement_entries(currency)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

// Record books a completed payment and moves the currency balance in the
// same transaction. A transaction id is booked at most once.
func (r *LedgerRepository) Record(ctx context.Context, entry *models.LedgerEntry) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO settlement_balances (currency, balance, entries)
		VALUES ($1, 0, 0)
		ON CONFLICT (currency) DO NOTHING
	`, entry.Currency); err != nil {
		return false, err
	}

	var balance decimal.Decimal
	if err := tx.QueryRowContext(ctx, `
		SELECT balance FROM settlement_balances WHERE currency = $1 FOR UPDATE
	`, entry.Currency).Scan(&balance); err != nil {
		return false, err
	}

	newBalance := balance.Add(entry.Amount)

	res, err := tx.ExecContext(ctx, `
		INSERT INTO settlement_entries (transaction_id, currency, amount, balance)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (transaction_id) DO NOTHING
	`, entry.TransactionID, entry.Currency, entry.Amount, newBalance)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return false, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE settlement_balances SET balance = $1, entries = entries + 1, updated_at = NOW()
		WHERE currency = $2
	`, newBalance, entry.Currency); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	entry.Balance = newBalance
	return true, nil
}

func (r *LedgerRepository) GetBalance(ctx context.Context, currency string) (*models.Balance, error) {
	var b models.Balance
	err := r.db.QueryRowContext(ctx, `
		SELECT currency, balance, entries, updated_at
		FROM settlement_balances WHERE currency = $1
	`, currency).Scan(&b.Currency, &b.Amount, &b.Entries, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
