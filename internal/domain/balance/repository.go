package balance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Repository persists per-user per-currency accounts in shop_balances.
type Repository struct {
	db              *sqlx.DB
	startingBalance int64
}

// NewRepository creates a balance repository. startingBalance seeds newly
// created primary-currency accounts; secondary accounts start at zero.
func NewRepository(db *sqlx.DB, startingBalance int64) *Repository {
	return &Repository{db: db, startingBalance: startingBalance}
}

func (r *Repository) seedFor(currency Currency) int64 {
	if currency == CurrencyPrimary {
		return r.startingBalance
	}
	return 0
}

// Ensure lazily creates the account row for (userID, currency).
func (r *Repository) Ensure(ctx context.Context, userID string, currency Currency) error {
	seed := r.seedFor(currency)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO shop_balances (user_id, currency, balance, total_earned, total_spent)
		VALUES ($1, $2, $3, $3, 0)
		ON CONFLICT (user_id, currency) DO NOTHING
	`, userID, string(currency), seed)
	return err
}

// EnsureTx is Ensure within a caller-owned transaction.
func (r *Repository) EnsureTx(ctx context.Context, tx *sqlx.Tx, userID string, currency Currency) error {
	seed := r.seedFor(currency)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO shop_balances (user_id, currency, balance, total_earned, total_spent)
		VALUES ($1, $2, $3, $3, 0)
		ON CONFLICT (user_id, currency) DO NOTHING
	`, userID, string(currency), seed)
	return err
}

// GetAccount returns the account for (userID, currency), creating it lazily.
func (r *Repository) GetAccount(ctx context.Context, userID string, currency Currency) (*Account, error) {
	if err := r.Ensure(ctx, userID, currency); err != nil {
		return nil, err
	}

	var acc Account
	err := r.db.GetContext(ctx, &acc, `
		SELECT user_id, currency, balance, total_earned, total_spent, updated_at
		FROM shop_balances
		WHERE user_id = $1 AND currency = $2
	`, userID, string(currency))
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// GetAccounts returns the user's accounts in every currency family,
// creating missing ones lazily.
func (r *Repository) GetAccounts(ctx context.Context, userID string) ([]Account, error) {
	accounts := make([]Account, 0, 2)
	for _, currency := range Currencies() {
		acc, err := r.GetAccount(ctx, userID, currency)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acc)
	}
	return accounts, nil
}

// DebitTx atomically debits amount inside the caller's transaction.
// The conditional update is the whole funds check: no row qualifies when the
// balance is short, so concurrent checkouts can never overdraw the account.
// A zero amount is a valid charge (a cart of free items) and leaves the
// balance untouched. Returns the new balance or ErrInsufficientFunds.
func (r *Repository) DebitTx(ctx context.Context, tx *sqlx.Tx, userID string, currency Currency, amount int64) (int64, error) {
	if amount < 0 {
		return 0, ErrInvalidAmount
	}
	if err := r.EnsureTx(ctx, tx, userID, currency); err != nil {
		return 0, err
	}

	var newBalance int64
	err := tx.GetContext(ctx, &newBalance, `
		UPDATE shop_balances
		SET balance = balance - $3,
		    total_spent = total_spent + $3,
		    updated_at = now()
		WHERE user_id = $1 AND currency = $2 AND balance >= $3
		RETURNING balance
	`, userID, string(currency), amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrInsufficientFunds
	}
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Credit adds amount to the account and bumps total_earned.
func (r *Repository) Credit(ctx context.Context, userID string, currency Currency, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if err := r.Ensure(ctx, userID, currency); err != nil {
		return 0, err
	}

	var newBalance int64
	err := r.db.GetContext(ctx, &newBalance, `
		UPDATE shop_balances
		SET balance = balance + $3,
		    total_earned = total_earned + $3,
		    updated_at = now()
		WHERE user_id = $1 AND currency = $2
		RETURNING balance
	`, userID, string(currency), amount)
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}
