package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidCurrency = errors.New("invalid currency")
)

// ItemNotFoundError aborts the whole checkout: a cart referencing an
// unknown item is never partially charged.
type ItemNotFoundError struct {
	ItemID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item not found: %s", e.ItemID)
}

// RoleRequiredError is returned before any balance mutation when the buyer
// lacks a required guild role.
type RoleRequiredError struct {
	ItemName string
	RoleID   string
	RoleName string
}

func (e *RoleRequiredError) Error() string {
	return fmt.Sprintf("item %q requires role %s", e.ItemName, e.RoleID)
}

// InsufficientFundsError carries the numbers the client renders.
type InsufficientFundsError struct {
	CurrentBalance int64
	RequiredAmount int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: have %d, need %d", e.CurrentBalance, e.RequiredAmount)
}

// TotalMismatchError is returned when the submitted total disagrees with
// the catalog prices; only catalog prices are ever charged.
type TotalMismatchError struct {
	Submitted int64
	Actual    int64
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("total mismatch: submitted %d, catalog total %d", e.Submitted, e.Actual)
}

// ItemUnavailableError is returned for items marked out of stock.
type ItemUnavailableError struct {
	ItemName string
}

func (e *ItemUnavailableError) Error() string {
	return fmt.Sprintf("item %q is out of stock", e.ItemName)
}

// AlreadyOwnedError is returned for single-purchase items the buyer
// already holds (or listed twice in one cart).
type AlreadyOwnedError struct {
	ItemName string
}

func (e *AlreadyOwnedError) Error() string {
	return fmt.Sprintf("item %q already purchased", e.ItemName)
}
