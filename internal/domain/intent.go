package domain

// Slot names one of the persisted records competing to represent the
// active purchase intent.
type Slot string

const (
	// SlotCart is the durable many-line cart.
	SlotCart Slot = "cart"
	// SlotBuyNow holds a single "pay for this right now" line.
	SlotBuyNow Slot = "buynow"
	// SlotCheckoutSnapshot is a copy of the cart frozen at "proceed to
	// checkout" time, so edits in another context cannot change an
	// in-flight checkout.
	SlotCheckoutSnapshot Slot = "checkout"
)

func (s Slot) String() string {
	return string(s)
}

// PurchaseIntent is a resolved expression of what the user wants to buy,
// independent of payment status.
type PurchaseIntent struct {
	Source Slot       `json:"source"`
	Lines  []CartLine `json:"lines"`
}

// IsEmpty reports whether the intent carries no lines.
func (p PurchaseIntent) IsEmpty() bool {
	return len(p.Lines) == 0
}
