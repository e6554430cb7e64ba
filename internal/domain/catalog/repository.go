package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const itemColumns = `
	id, name, description, price, category, content_type,
	text_content, link_url, file_url, file_name, youtube_url,
	image_url, thumbnail_url, in_stock, allow_multiple_purchases,
	requires_role, required_role_id, required_role_name,
	purchase_count, created_at, updated_at`

// Repository persists catalog items in shop_items.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates catalog repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new item
func (r *Repository) Create(ctx context.Context, item *Item) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO shop_items (
			id, name, description, price, category, content_type,
			text_content, link_url, file_url, file_name, youtube_url,
			image_url, thumbnail_url, in_stock, allow_multiple_purchases,
			requires_role, required_role_id, required_role_name,
			purchase_count, created_at, updated_at
		) VALUES (
			:id, :name, :description, :price, :category, :content_type,
			:text_content, :link_url, :file_url, :file_name, :youtube_url,
			:image_url, :thumbnail_url, :in_stock, :allow_multiple_purchases,
			:requires_role, :required_role_id, :required_role_name,
			:purchase_count, :created_at, :updated_at
		)
	`, item)
	return err
}

// GetByID returns one item or ErrItemNotFound
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	var item Item
	err := r.db.GetContext(ctx, &item,
		`SELECT `+itemColumns+` FROM shop_items WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns items, optionally filtered by category
func (r *Repository) List(ctx context.Context, category string) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM shop_items`
	args := []interface{}{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	items := []Item{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

// Update applies a partial update and returns the updated item
func (r *Repository) Update(ctx context.Context, id uuid.UUID, req *UpdateItemRequest) (*Item, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{}
	idx := 1

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if req.Name != nil {
		add("name", *req.Name)
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.Price != nil {
		add("price", *req.Price)
	}
	if req.Category != nil {
		add("category", *req.Category)
	}
	if req.ContentType != nil {
		add("content_type", *req.ContentType)
	}
	if req.TextContent != nil {
		add("text_content", *req.TextContent)
	}
	if req.LinkURL != nil {
		add("link_url", *req.LinkURL)
	}
	if req.YouTubeURL != nil {
		add("youtube_url", *req.YouTubeURL)
	}
	if req.InStock != nil {
		add("in_stock", *req.InStock)
	}
	if req.AllowMultiplePurchases != nil {
		add("allow_multiple_purchases", *req.AllowMultiplePurchases)
	}
	if req.RequiresRole != nil {
		add("requires_role", *req.RequiresRole)
	}
	if req.RequiredRoleID != nil {
		add("required_role_id", *req.RequiredRoleID)
	}
	if req.RequiredRoleName != nil {
		add("required_role_name", *req.RequiredRoleName)
	}

	query := fmt.Sprintf(`UPDATE shop_items SET %s WHERE id = $%d RETURNING `+itemColumns,
		strings.Join(sets, ", "), idx)
	args = append(args, id)

	var item Item
	err := r.db.GetContext(ctx, &item, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes an item
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shop_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// SetFile updates the deliverable file reference
func (r *Repository) SetFile(ctx context.Context, id uuid.UUID, fileURL, fileName string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE shop_items
		SET file_url = $2, file_name = $3, content_type = 'file', updated_at = now()
		WHERE id = $1
	`, id, fileURL, fileName)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// SetImage updates the item image and thumbnail
func (r *Repository) SetImage(ctx context.Context, id uuid.UUID, imageURL, thumbnailURL string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE shop_items
		SET image_url = $2, thumbnail_url = $3, updated_at = now()
		WHERE id = $1
	`, id, imageURL, thumbnailURL)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// IncrementPurchaseCountTx bumps the sales counter inside a checkout
// transaction.
func (r *Repository) IncrementPurchaseCountTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE shop_items SET purchase_count = purchase_count + 1 WHERE id = $1`, id)
	return err
}
