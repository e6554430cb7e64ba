package balance

import "time"

// Currency identifies one of the two independent coin families. There is
// no exchange rate between them.
type Currency string

const (
	CurrencyPrimary   Currency = "primary"
	CurrencySecondary Currency = "secondary"
)

// Valid reports whether the currency is a known family.
func (c Currency) Valid() bool {
	return c == CurrencyPrimary || c == CurrencySecondary
}

// Currencies lists all currency families.
func Currencies() []Currency {
	return []Currency{CurrencyPrimary, CurrencySecondary}
}

// Account is one user's balance in one currency family. Created lazily on
// first use and never deleted. Balance never goes negative; TotalEarned and
// TotalSpent only grow.
type Account struct {
	UserID      string    `db:"user_id" json:"user_id"`
	Currency    Currency  `db:"currency" json:"currency"`
	Balance     int64     `db:"balance" json:"balance"`
	TotalEarned int64     `db:"total_earned" json:"total_earned"`
	TotalSpent  int64     `db:"total_spent" json:"total_spent"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
