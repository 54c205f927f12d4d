// Package resolver decides which persisted purchase intent is
// authoritative when several slots compete.
package resolver

import (
	"context"
	"errors"
	"log"

	"github.com/03Sandip/gonotes-checkout/internal/domain"
	"github.com/03Sandip/gonotes-checkout/internal/store"
)

var ErrEmptyIntent = errors.New("no usable purchase intent")

type Resolver struct {
	store *store.IntentStore
}

func New(s *store.IntentStore) *Resolver {
	return &Resolver{store: s}
}

// Resolve returns the single intent that should be checked out.
//
// Precedence, highest first: buy-now (the most recent, most specific user
// action), then the checkout snapshot (a deliberate "proceed to checkout"),
// then the cart itself. Selecting buy-now clears the checkout snapshot: a
// buy-now click invalidates any stale cart checkout in progress.
//
// Malformed records read as absent at the store boundary, so resolution
// is total: it returns an intent or ErrEmptyIntent, never a parse error.
func (r *Resolver) Resolve(ctx context.Context) (domain.PurchaseIntent, error) {
	buyNow, err := r.store.Read(ctx, domain.SlotBuyNow)
	if err != nil {
		return domain.PurchaseIntent{}, err
	}
	if len(buyNow.Lines) > 0 && buyNow.Lines[0].IsWellFormed() {
		if err := r.store.Clear(ctx, domain.SlotCheckoutSnapshot); err != nil {
			log.Printf("failed to clear checkout snapshot: %v", err)
		}
		return buyNow, nil
	}

	snapshot, err := r.store.Read(ctx, domain.SlotCheckoutSnapshot)
	if err != nil {
		return domain.PurchaseIntent{}, err
	}
	if !snapshot.IsEmpty() {
		return snapshot, nil
	}

	cart, err := r.store.Read(ctx, domain.SlotCart)
	if err != nil {
		return domain.PurchaseIntent{}, err
	}
	if !cart.IsEmpty() {
		return cart, nil
	}

	return domain.PurchaseIntent{}, ErrEmptyIntent
}
