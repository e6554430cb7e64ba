package checkout

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/hamsterhub/hamsterhub-api/internal/domain/balance"
	"github.com/hamsterhub/hamsterhub-api/internal/domain/catalog"
	"github.com/hamsterhub/hamsterhub-api/internal/domain/purchase"
)

// SQLLedger applies a checkout in one database transaction. The balance
// debit is a conditional update, so the funds check and the debit are a
// single atomic step even under concurrent checkouts for the same user.
type SQLLedger struct {
	db        *sqlx.DB
	balances  *balance.Repository
	purchases *purchase.Repository
	items     *catalog.Repository
}

// NewSQLLedger creates the transactional ledger
func NewSQLLedger(db *sqlx.DB, balances *balance.Repository, purchases *purchase.Repository, items *catalog.Repository) *SQLLedger {
	return &SQLLedger{db: db, balances: balances, purchases: purchases, items: items}
}

// Apply debits the order total and writes the order header, every purchase
// entry and the per-item sales counters. Commits all or nothing.
func (l *SQLLedger) Apply(ctx context.Context, order *purchase.Order, entries []*purchase.Entry) (int64, error) {
	tx, err := l.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	newBalance, err := l.balances.DebitTx(ctx, tx, order.UserID, order.Currency, order.TotalAmount)
	if err != nil {
		return 0, err
	}

	if err := l.purchases.InsertOrderTx(ctx, tx, order); err != nil {
		return 0, err
	}
	for _, entry := range entries {
		if err := l.purchases.InsertEntryTx(ctx, tx, entry); err != nil {
			return 0, err
		}
		if err := l.items.IncrementPurchaseCountTx(ctx, tx, entry.ItemID); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}
