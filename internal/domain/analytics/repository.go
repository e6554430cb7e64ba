package analytics

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Repository loads the purchase records a report is computed over.
// Filtering happens in SQL; aggregation happens in memory.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates analytics repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Fetch returns every purchase record matching the filters, joined with the
// live catalog row so category filters see current categories. Deleted items
// fall back to the snapshot content type and an empty category.
func (r *Repository) Fetch(ctx context.Context, f Filters) ([]Record, error) {
	query := `
		SELECT
			p.user_id,
			p.username,
			p.item_id,
			p.item_name,
			p.price,
			p.currency,
			p.purchase_date,
			COALESCE(i.category, '') AS category,
			COALESCE(i.content_type, p.content_type) AS content_type
		FROM shop_purchases p
		LEFT JOIN shop_items i ON i.id = p.item_id`

	conditions := []string{}
	args := []interface{}{}
	idx := 1

	if days, ok := parseTimeRange(f.TimeRange); ok {
		conditions = append(conditions, fmt.Sprintf("p.purchase_date >= NOW() - ($%d || ' days')::interval", idx))
		args = append(args, days)
		idx++
	}
	if f.Currency != "" {
		conditions = append(conditions, fmt.Sprintf("p.currency = $%d", idx))
		args = append(args, f.Currency)
		idx++
	}
	if f.Category != "" {
		conditions = append(conditions, fmt.Sprintf("i.category = $%d", idx))
		args = append(args, f.Category)
		idx++
	}
	if f.ContentType != "" {
		conditions = append(conditions, fmt.Sprintf("COALESCE(i.content_type, p.content_type) = $%d", idx))
		args = append(args, f.ContentType)
		idx++
	}
	if f.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("p.price >= $%d", idx))
		args = append(args, *f.MinPrice)
		idx++
	}
	if f.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("p.price <= $%d", idx))
		args = append(args, *f.MaxPrice)
		idx++
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.purchase_date DESC"

	records := []Record{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("fetch purchase records: %w", err)
	}
	return records, nil
}

// parseTimeRange interprets the time_range filter as a day count.
// "all", empty and unparsable values mean no lower bound.
func parseTimeRange(v string) (int, bool) {
	if v == "" || v == "all" {
		return 0, false
	}
	days, err := strconv.Atoi(v)
	if err != nil || days <= 0 {
		return 0, false
	}
	return days, true
}
