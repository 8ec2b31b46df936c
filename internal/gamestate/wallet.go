package gamestate

import (
	"context"
	"fmt"
	"sync"

	"github.com/osse101/BrandishGacha_Go/internal/domain"
)

// CurrencyPath returns the store path of a currency balance.
func CurrencyPath(c domain.Currency) string {
	return CurrencyPathPrefix + string(c)
}

// Wallet reads and debits currency balances kept in a Store.
type Wallet struct {
	store Store
	mu    sync.Mutex
}

// NewWallet creates a wallet over store.
func NewWallet(store Store) *Wallet {
	return &Wallet{store: store}
}

// Balances returns every supported currency balance. Missing balances are zero.
func (w *Wallet) Balances(ctx context.Context) (domain.Cost, error) {
	out := make(domain.Cost, len(domain.Currencies()))
	for _, c := range domain.Currencies() {
		raw, _, err := w.store.Get(ctx, CurrencyPath(c))
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", ErrMsgReadBalance, c, err)
		}
		v, err := ToInt64(raw)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", ErrMsgReadBalance, c, err)
		}
		out[c] = v
	}
	return out, nil
}

// Deduct debits cost in a single store update. Nothing is written when any
// balance would go negative.
func (w *Wallet) Deduct(ctx context.Context, cost domain.Cost) error {
	for c, amount := range cost {
		if !c.Valid() {
			return fmt.Errorf("%w: %s", domain.ErrUnknownCurrency, c)
		}
		if amount < 0 {
			return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, ErrMsgNegativeAmount)
		}
	}
	if cost.IsZero() {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	balances, err := w.Balances(ctx)
	if err != nil {
		return err
	}
	if shortfall := cost.Shortfall(balances); len(shortfall) > 0 {
		return domain.NewInsufficientResourcesError(cost, balances)
	}

	patch := make(map[string]any, len(cost))
	for c, amount := range cost {
		patch[CurrencyPath(c)] = balances[c] - amount
	}
	if err := w.store.Update(ctx, patch, UpdateMeta{Source: SourceWallet}); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgWriteBalance, err)
	}
	return nil
}

// Grant credits amount to the balances.
func (w *Wallet) Grant(ctx context.Context, amount domain.Cost) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, c := range amount.Keys() {
		if !c.Valid() {
			return fmt.Errorf("%w: %s", domain.ErrUnknownCurrency, c)
		}
		if amount[c] < 0 {
			return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, ErrMsgNegativeAmount)
		}
		if _, err := w.store.Increment(ctx, CurrencyPath(c), amount[c]); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgWriteBalance, err)
		}
	}
	return nil
}
