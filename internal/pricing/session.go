// Package pricing holds the derived pricing state of a checkout: the
// resolved lines, the running subtotal, any applied coupon, and the
// payable amount. Nothing here is persisted — the session is recomputed
// from the intent, so it can never drift out of sync with it.
package pricing

import (
	"github.com/03Sandip/gonotes-checkout/internal/domain"
)

// Session is the pricing view of a resolved purchase intent.
type Session struct {
	Lines    []domain.CartLine
	Coupon   *domain.Coupon
	Discount float64
}

// NewSession builds a session from a resolved intent. No coupon is
// carried over; codes are re-validated per checkout page.
func NewSession(intent domain.PurchaseIntent) *Session {
	lines := make([]domain.CartLine, len(intent.Lines))
	copy(lines, intent.Lines)
	return &Session{Lines: lines}
}

// Subtotal is always recomputed from the lines, never cached.
func (s *Session) Subtotal() float64 {
	return domain.Subtotal(s.Lines)
}

// Payable is the subtotal minus the discount, clamped at zero — a coupon
// can never make the total negative.
func (s *Session) Payable() float64 {
	p := s.Subtotal() - s.Discount
	if p < 0 {
		return 0
	}
	return p
}

// ApplyCoupon records a server-accepted discount against the current
// subtotal.
func (s *Session) ApplyCoupon(coupon domain.Coupon, discountAmount float64) {
	s.Coupon = &coupon
	s.Discount = discountAmount
}

// ClearCoupon resets the discount to zero. Called on any rejection, so a
// failed validation never leaves a stale discount applied.
func (s *Session) ClearCoupon() {
	s.Coupon = nil
	s.Discount = 0
}

// CouponCode returns the applied code, or "" when none is applied.
func (s *Session) CouponCode() string {
	if s.Coupon == nil {
		return ""
	}
	return s.Coupon.Code
}

// SetLines replaces the session lines. Any applied coupon is dropped:
// a discount is only trusted against the subtotal it was validated for.
func (s *Session) SetLines(lines []domain.CartLine) {
	s.Lines = make([]domain.CartLine, len(lines))
	copy(s.Lines, lines)
	s.ClearCoupon()
}
