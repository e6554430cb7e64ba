package balance

import "errors"

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidCurrency   = errors.New("invalid currency")
	ErrInsufficientFunds = errors.New("insufficient balance")
)
