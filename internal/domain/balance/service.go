package balance

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Store is the persistence surface the service needs.
type Store interface {
	GetAccount(ctx context.Context, userID string, currency Currency) (*Account, error)
	GetAccounts(ctx context.Context, userID string) ([]Account, error)
	Credit(ctx context.Context, userID string, currency Currency, amount int64) (int64, error)
}

// Service exposes balance reads and admin grants.
type Service struct {
	store Store
}

// NewService creates balance service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetBalances returns the user's account in every currency family.
func (s *Service) GetBalances(ctx context.Context, userID string) ([]Account, error) {
	return s.store.GetAccounts(ctx, userID)
}

// Grant credits amount to a user's account. Admin-only at the HTTP layer.
func (s *Service) Grant(ctx context.Context, userID string, currency Currency, amount int64) (int64, error) {
	if !currency.Valid() {
		return 0, ErrInvalidCurrency
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	newBalance, err := s.store.Credit(ctx, userID, currency, amount)
	if err != nil {
		return 0, err
	}

	log.Info().
		Str("user_id", userID).
		Str("currency", string(currency)).
		Int64("amount", amount).
		Int64("new_balance", newBalance).
		Msg("balance grant applied")
	return newBalance, nil
}
