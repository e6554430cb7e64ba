package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hamsterhub/hamsterhub-api/internal/domain/balance"
	"github.com/hamsterhub/hamsterhub-api/internal/domain/catalog"
	"github.com/hamsterhub/hamsterhub-api/internal/domain/purchase"
)

// Catalog resolves items at checkout time.
type Catalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error)
}

// Entitlements is the external role oracle. Checked once per role-gated
// item, per checkout.
type Entitlements interface {
	HasRole(ctx context.Context, userID, roleID string) (bool, error)
}

// Ownership answers whether the buyer already holds an item.
type Ownership interface {
	HasPurchase(ctx context.Context, userID string, itemID uuid.UUID) (bool, error)
}

// Balances reads the buyer's account for the fail-fast funds check and for
// error detail reporting.
type Balances interface {
	GetAccount(ctx context.Context, userID string, currency balance.Currency) (*balance.Account, error)
}

// Ledger applies the mutation phase of a checkout atomically: conditional
// debit, order header, purchase entries, item counters. All or nothing.
type Ledger interface {
	Apply(ctx context.Context, order *purchase.Order, entries []*purchase.Entry) (newBalance int64, err error)
}

// Service is the checkout ledger. Validation (items, entitlements, funds)
// strictly precedes mutation; every rejection is side-effect-free.
type Service struct {
	catalog      Catalog
	entitlements Entitlements
	ownership    Ownership
	balances     Balances
	ledger       Ledger
}

// NewService creates checkout service
func NewService(cat Catalog, ent Entitlements, own Ownership, bal Balances, ledger Ledger) *Service {
	return &Service{
		catalog:      cat,
		entitlements: ent,
		ownership:    own,
		balances:     bal,
		ledger:       ledger,
	}
}

// Checkout debits the cart total and materializes purchase history.
func (s *Service) Checkout(ctx context.Context, userID, username string, req *Request) (*Result, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	currency := balance.Currency(req.Currency)
	if !currency.Valid() {
		return nil, ErrInvalidCurrency
	}

	// Resolve every cart line. A single unknown id aborts the whole
	// checkout: no partial charges for undeliverable goods.
	items := make([]*catalog.Item, 0, len(req.Items))
	for _, line := range req.Items {
		id, err := uuid.Parse(line.ID)
		if err != nil {
			return nil, &ItemNotFoundError{ItemID: line.ID}
		}
		item, err := s.catalog.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, catalog.ErrItemNotFound) {
				return nil, &ItemNotFoundError{ItemID: line.ID}
			}
			return nil, err
		}
		items = append(items, item)
	}

	var total int64
	for _, item := range items {
		total += item.Price
	}
	if total != req.TotalAmount {
		return nil, &TotalMismatchError{Submitted: req.TotalAmount, Actual: total}
	}

	// Per-item gates, all before any mutation.
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if !item.InStock {
			return nil, &ItemUnavailableError{ItemName: item.Name}
		}
		if !item.AllowMultiplePurchases {
			if seen[item.ID] {
				return nil, &AlreadyOwnedError{ItemName: item.Name}
			}
			owned, err := s.ownership.HasPurchase(ctx, userID, item.ID)
			if err != nil {
				return nil, err
			}
			if owned {
				return nil, &AlreadyOwnedError{ItemName: item.Name}
			}
		}
		seen[item.ID] = true

		if item.RequiresRole {
			ok, err := s.entitlements.HasRole(ctx, userID, item.RequiredRoleID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, &RoleRequiredError{
					ItemName: item.Name,
					RoleID:   item.RequiredRoleID,
					RoleName: item.RequiredRoleName,
				}
			}
		}
	}

	// Fail fast with exact numbers. The ledger's conditional debit
	// re-checks under the transaction, so a concurrent spend can't slip
	// through between here and Apply.
	account, err := s.balances.GetAccount(ctx, userID, currency)
	if err != nil {
		return nil, err
	}
	if account.Balance < total {
		return nil, &InsufficientFundsError{CurrentBalance: account.Balance, RequiredAmount: total}
	}

	order := &purchase.Order{
		ID:          uuid.New(),
		UserID:      userID,
		Username:    username,
		Currency:    currency,
		TotalAmount: total,
		ItemCount:   len(items),
	}

	// Snapshot deliverable content now: later catalog edits must not
	// change what this buyer receives.
	entries := make([]*purchase.Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, &purchase.Entry{
			ID:          uuid.New(),
			OrderID:     order.ID,
			UserID:      userID,
			Username:    username,
			ItemID:      item.ID,
			ItemName:    item.Name,
			Price:       item.Price,
			Currency:    currency,
			ContentType: item.ContentType,
			TextContent: item.TextContent,
			LinkURL:     item.LinkURL,
			FileURL:     item.FileURL,
			FileName:    item.FileName,
			YouTubeURL:  item.YouTubeURL,
			ImageURL:    item.ImageURL,
		})
	}

	newBalance, err := s.ledger.Apply(ctx, order, entries)
	if err != nil {
		if errors.Is(err, balance.ErrInsufficientFunds) {
			// Lost a race against a concurrent debit.
			account, accErr := s.balances.GetAccount(ctx, userID, currency)
			if accErr != nil {
				return nil, accErr
			}
			return nil, &InsufficientFundsError{CurrentBalance: account.Balance, RequiredAmount: total}
		}
		return nil, err
	}

	purchases := make([]PurchasedItem, 0, len(entries))
	for _, e := range entries {
		purchases = append(purchases, PurchasedItem{
			PurchaseID:  e.ID,
			ItemID:      e.ItemID,
			ItemName:    e.ItemName,
			Image:       e.ImageURL,
			ContentType: string(e.ContentType),
			TextContent: e.TextContent,
			LinkURL:     e.LinkURL,
			HasFile:     e.HasFile(),
			FileName:    e.FileName,
			YouTubeURL:  e.YouTubeURL,
		})
	}

	log.Info().
		Str("user_id", userID).
		Str("order_id", order.ID.String()).
		Str("currency", string(currency)).
		Int64("total", total).
		Int("items", len(items)).
		Int64("new_balance", newBalance).
		Msg("checkout completed")

	return &Result{
		NewBalance: newBalance,
		Currency:   currency,
		OrderID:    order.ID,
		Purchases:  purchases,
	}, nil
}
