package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/03Sandip/gonotes-checkout/internal/domain"
)

// Storage keys, kept identical to the records the storefront persists.
const (
	keyCart     = "gonotes_cart"
	keyBuyNow   = "gonotes_buynow"
	keyCheckout = "gonotes_checkout"
	keyAttempt  = "gonotes_attempt"
)

var ErrItemNotFound = errors.New("item not found in cart")

// IntentStore is the typed wrapper over the raw KV area. All shape
// validation and coercion happens here: a malformed record reads as an
// empty intent, never as an error the caller has to handle.
//
// Reads and writes are not atomic across slots. Two contexts editing the
// cart concurrently get last-write-wins at the granularity of a full slot
// write; the checkout snapshot exists to keep an in-flight payment away
// from that race.
type IntentStore struct {
	kv KV
}

func NewIntentStore(kv KV) *IntentStore {
	return &IntentStore{kv: kv}
}

func slotKey(slot domain.Slot) string {
	switch slot {
	case domain.SlotBuyNow:
		return keyBuyNow
	case domain.SlotCheckoutSnapshot:
		return keyCheckout
	default:
		return keyCart
	}
}

// Read returns the intent stored in slot. An absent, malformed, or
// empty record yields an intent with no lines.
func (s *IntentStore) Read(ctx context.Context, slot domain.Slot) (domain.PurchaseIntent, error) {
	intent := domain.PurchaseIntent{Source: slot}

	raw, err := s.kv.Get(ctx, slotKey(slot))
	if errors.Is(err, ErrNotFound) {
		return intent, nil
	}
	if err != nil {
		return intent, fmt.Errorf("failed to read slot %s: %w", slot, err)
	}

	intent.Lines = decodeLines(raw, slot == domain.SlotBuyNow)
	return intent, nil
}

// Write stores the intent's lines into slot. The buy-now slot is stored
// as a single object, the other slots as arrays, matching the persisted
// layout of the storefront.
func (s *IntentStore) Write(ctx context.Context, slot domain.Slot, intent domain.PurchaseIntent) error {
	var payload any = intent.Lines
	if slot == domain.SlotBuyNow {
		if len(intent.Lines) == 0 {
			return s.Clear(ctx, slot)
		}
		payload = intent.Lines[0]
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal slot %s: %w", slot, err)
	}
	if err := s.kv.Set(ctx, slotKey(slot), raw); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", slot, err)
	}
	return nil
}

func (s *IntentStore) Clear(ctx context.Context, slot domain.Slot) error {
	if err := s.kv.Delete(ctx, slotKey(slot)); err != nil {
		return fmt.Errorf("failed to clear slot %s: %w", slot, err)
	}
	return nil
}

// ClearAll removes all three intent slots and any persisted attempt.
// This is three independent deletes, not a transaction; it is only called
// after verification succeeds, when every slot is dead anyway.
func (s *IntentStore) ClearAll(ctx context.Context) error {
	for _, key := range []string{keyCart, keyBuyNow, keyCheckout, keyAttempt} {
		if err := s.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	return nil
}

// AddLine merges a line into the cart slot: an existing id gets its
// quantity bumped (capped), a new id is appended.
func (s *IntentStore) AddLine(ctx context.Context, line domain.CartLine) error {
	cart, err := s.Read(ctx, domain.SlotCart)
	if err != nil {
		return err
	}

	line.Quantity = domain.ClampQuantity(line.Quantity)
	merged := false
	for i := range cart.Lines {
		if cart.Lines[i].ID == line.ID {
			cart.Lines[i].Quantity = domain.ClampQuantity(cart.Lines[i].Quantity + line.Quantity)
			merged = true
			break
		}
	}
	if !merged {
		cart.Lines = append(cart.Lines, line)
	}

	return s.Write(ctx, domain.SlotCart, cart)
}

// UpdateQuantity sets the quantity of a cart line, clamped to the
// allowed range.
func (s *IntentStore) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	cart, err := s.Read(ctx, domain.SlotCart)
	if err != nil {
		return err
	}

	for i := range cart.Lines {
		if cart.Lines[i].ID == id {
			cart.Lines[i].Quantity = domain.ClampQuantity(quantity)
			return s.Write(ctx, domain.SlotCart, cart)
		}
	}
	return ErrItemNotFound
}

// RemoveLine deletes a cart line by id.
func (s *IntentStore) RemoveLine(ctx context.Context, id string) error {
	cart, err := s.Read(ctx, domain.SlotCart)
	if err != nil {
		return err
	}

	for i, l := range cart.Lines {
		if l.ID == id {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			return s.Write(ctx, domain.SlotCart, cart)
		}
	}
	return ErrItemNotFound
}

// decodeLines turns a raw slot record into validated cart lines. The
// record may be an array or (for buy-now) a single object; anything that
// does not coerce into a line is dropped.
func decodeLines(raw []byte, single bool) []domain.CartLine {
	var records []rawLine

	if single {
		var r rawLine
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil
		}
		records = []rawLine{r}
	} else {
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil
		}
	}

	lines := make([]domain.CartLine, 0, len(records))
	for _, r := range records {
		if line, ok := r.toLine(); ok {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return lines
}

// rawLine tolerates the loose shapes found in persisted records: numeric
// or string ids, price under "price" or "discountPrice", missing qty.
type rawLine struct {
	ID            any    `json:"id"`
	Title         string `json:"title"`
	Price         any    `json:"price"`
	DiscountPrice any    `json:"discountPrice"`
	Qty           any    `json:"qty"`
}

func (r rawLine) toLine() (domain.CartLine, bool) {
	price, ok := toNumber(r.Price)
	if !ok || price == 0 {
		if dp, dok := toNumber(r.DiscountPrice); dok {
			price, ok = dp, true
		}
	}
	if !ok || price < 0 {
		return domain.CartLine{}, false
	}

	id := toString(r.ID)
	if id == "" {
		return domain.CartLine{}, false
	}

	qty := 1
	if q, qok := toNumber(r.Qty); qok {
		qty = domain.ClampQuantity(int(q))
	}

	return domain.CartLine{
		ID:       id,
		Title:    r.Title,
		Price:    price,
		Quantity: qty,
	}, true
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}
