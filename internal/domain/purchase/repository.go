package purchase

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const entryColumns = `
	id, order_id, user_id, username, item_id, item_name, price, currency,
	content_type, text_content, link_url, file_url, file_name, youtube_url,
	image_url, download_count, last_download_at, purchase_date`

// Repository persists orders and purchase entries. Entries are append-only;
// only download bookkeeping mutates them afterwards.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates purchase repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// InsertOrderTx writes the checkout header inside a checkout transaction.
func (r *Repository) InsertOrderTx(ctx context.Context, tx *sqlx.Tx, order *Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO shop_orders (id, user_id, username, currency, total_amount, item_count, created_at)
		VALUES (:id, :user_id, :username, :currency, :total_amount, :item_count, :created_at)
	`, order)
	return err
}

// InsertEntryTx writes one purchase entry inside a checkout transaction.
func (r *Repository) InsertEntryTx(ctx context.Context, tx *sqlx.Tx, entry *Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.PurchaseDate.IsZero() {
		entry.PurchaseDate = time.Now()
	}
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO shop_purchases (
			id, order_id, user_id, username, item_id, item_name, price, currency,
			content_type, text_content, link_url, file_url, file_name, youtube_url,
			image_url, download_count, purchase_date
		) VALUES (
			:id, :order_id, :user_id, :username, :item_id, :item_name, :price, :currency,
			:content_type, :text_content, :link_url, :file_url, :file_name, :youtube_url,
			:image_url, 0, :purchase_date
		)
	`, entry)
	return err
}

// GetByID returns one entry or ErrPurchaseNotFound.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	var entry Entry
	err := r.db.GetContext(ctx, &entry,
		`SELECT `+entryColumns+` FROM shop_purchases WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPurchaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByUser returns a user's purchases, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Entry, error) {
	entries := []Entry{}
	err := r.db.SelectContext(ctx, &entries,
		`SELECT `+entryColumns+` FROM shop_purchases WHERE user_id = $1 ORDER BY purchase_date DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListOrdersByUser returns a user's checkout headers, newest first.
func (r *Repository) ListOrdersByUser(ctx context.Context, userID string) ([]Order, error) {
	orders := []Order{}
	err := r.db.SelectContext(ctx, &orders, `
		SELECT id, user_id, username, currency, total_amount, item_count, created_at
		FROM shop_orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// HasPurchase reports whether the user already bought the item.
func (r *Repository) HasPurchase(ctx context.Context, userID string, itemID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM shop_purchases WHERE user_id = $1 AND item_id = $2)`,
		userID, itemID)
	return exists, err
}

// RecordDownload bumps the download counter and stamps the time.
func (r *Repository) RecordDownload(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE shop_purchases
		SET download_count = download_count + 1, last_download_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrPurchaseNotFound
	}
	return nil
}
