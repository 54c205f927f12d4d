package domain

const (
	// MinQuantity and MaxQuantity bound the quantity of a single cart line.
	MinQuantity = 1
	MaxQuantity = 99
)

// CartLine is a single purchasable line item. The json tags match the
// records persisted by the storefront ("price"/"qty", not "unit_price").
type CartLine struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"qty"`
}

// LineTotal returns price times quantity for this line.
func (l CartLine) LineTotal() float64 {
	return l.Price * float64(l.Quantity)
}

// IsWellFormed reports whether the line can take part in a checkout:
// non-empty title and a positive price.
func (l CartLine) IsWellFormed() bool {
	return l.Title != "" && l.Price > 0
}

// ClampQuantity forces q into [MinQuantity, MaxQuantity].
func ClampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

// Subtotal sums line totals over the given lines.
func Subtotal(lines []CartLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.LineTotal()
	}
	return total
}
