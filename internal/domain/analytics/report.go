package analytics

import (
	"time"

	"github.com/google/uuid"
)

// Filters narrows the purchase record set a report is computed over.
// Zero values mean "no filter". TimeRange is a day count or "all".
type Filters struct {
	TimeRange   string `json:"time_range,omitempty"`
	Currency    string `json:"currency,omitempty"`
	Category    string `json:"category,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	MinPrice    *int64 `json:"min_price,omitempty"`
	MaxPrice    *int64 `json:"max_price,omitempty"`
}

// Record is one purchase joined with its catalog item. Category and
// content type come from the live item, falling back to the purchase
// snapshot when the item has been deleted.
type Record struct {
	UserID       string    `db:"user_id"`
	Username     string    `db:"username"`
	ItemID       uuid.UUID `db:"item_id"`
	ItemName     string    `db:"item_name"`
	Price        int64     `db:"price"`
	Currency     string    `db:"currency"`
	PurchaseDate time.Time `db:"purchase_date"`
	Category     string    `db:"category"`
	ContentType  string    `db:"content_type"`
}

// Overview holds the headline numbers.
type Overview struct {
	TotalRevenue      int64   `json:"total_revenue"`
	TotalPurchases    int     `json:"total_purchases"`
	UniqueBuyers      int     `json:"unique_buyers"`
	UniqueItems       int     `json:"unique_items"`
	AverageOrderValue float64 `json:"average_order_value"`
}

// ItemStat is one row of the top-selling items ranking.
type ItemStat struct {
	ItemID       uuid.UUID `json:"item_id"`
	ItemName     string    `json:"item_name"`
	Sales        int       `json:"sales"`
	Revenue      int64     `json:"revenue"`
	UniqueBuyers int       `json:"unique_buyers"`
}

// SpenderStat is one row of the top-spenders ranking.
type SpenderStat struct {
	UserID    string   `json:"user_id"`
	Username  string   `json:"username"`
	Spending  int64    `json:"spending"`
	Purchases int      `json:"purchases"`
	Items     []string `json:"items"`
}

// Bucket is a count/revenue pair.
type Bucket struct {
	Count   int   `json:"count"`
	Revenue int64 `json:"revenue"`
}

// DailySales is one calendar day's totals.
type DailySales struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Count   int    `json:"count"`
	Revenue int64  `json:"revenue"`
}

// UserPurchase is one line of a user's purchase detail.
type UserPurchase struct {
	ItemID       uuid.UUID `json:"item_id"`
	ItemName     string    `json:"item_name"`
	Price        int64     `json:"price"`
	PurchaseDate time.Time `json:"purchase_date"`
	Currency     string    `json:"currency"`
}

// UserDetail groups a user's purchases.
type UserDetail struct {
	UserID         string         `json:"user_id"`
	Username       string         `json:"username"`
	TotalPurchases int            `json:"total_purchases"`
	TotalSpent     int64          `json:"total_spent"`
	Purchases      []UserPurchase `json:"purchases"`
}

// Report is the full analytics payload.
type Report struct {
	Overview          Overview          `json:"overview"`
	TopItems          []ItemStat        `json:"top_items"`
	TopSpenders       []SpenderStat     `json:"top_spenders"`
	CurrencyBreakdown map[string]Bucket `json:"currency_breakdown"`
	DailySales        []DailySales      `json:"daily_sales"`
	ContentTypeStats  map[string]Bucket `json:"content_type_stats"`
	UserPurchases     []UserDetail      `json:"user_purchases"`
	Filters           Filters           `json:"filters"`
	GeneratedAt       time.Time         `json:"generated_at"`
}
