package balance

import (
	"context"
	"errors"
	"testing"
)

func TestDebitTxRejectsNegativeAmount(t *testing.T) {
	repo := NewRepository(nil, 100)

	// The guard fires before any database access, so a nil tx is safe here.
	_, err := repo.DebitTx(context.Background(), nil, "u1", CurrencyPrimary, -1)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}

func TestSeedForCurrency(t *testing.T) {
	repo := NewRepository(nil, 100)

	if got := repo.seedFor(CurrencyPrimary); got != 100 {
		t.Errorf("primary seed = %d, want 100", got)
	}
	if got := repo.seedFor(CurrencySecondary); got != 0 {
		t.Errorf("secondary seed = %d, want 0", got)
	}
}
