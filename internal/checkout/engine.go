// Package checkout drives a single checkout attempt: resolving the
// authoritative intent, pricing it, creating a gateway order, and
// settling exactly once when the gateway reports completion.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/03Sandip/gonotes-checkout/internal/domain"
	"github.com/03Sandip/gonotes-checkout/internal/events"
	"github.com/03Sandip/gonotes-checkout/internal/gateway"
	"github.com/03Sandip/gonotes-checkout/internal/pricing"
	"github.com/03Sandip/gonotes-checkout/internal/resolver"
	"github.com/03Sandip/gonotes-checkout/internal/store"
)

// GatewayClient is the slice of the gateway REST client the engine needs.
type GatewayClient interface {
	CreateOrder(ctx context.Context, amount float64) (*domain.Order, error)
	Verify(ctx context.Context, token string, result domain.PaymentResult, lines []domain.CartLine, couponCode string) error
}

// CouponValidator validates a code against a subtotal.
type CouponValidator interface {
	Validate(ctx context.Context, code string, subtotal float64) pricing.ValidationResult
}

// Attempt is one checkout attempt. Its lines and amount are fixed at
// BeginPayment time and never re-read from the store mid-flow.
type Attempt struct {
	ID         string
	OrderID    string
	Amount     int64
	Currency   string
	Payable    float64
	Lines      []domain.CartLine
	CouponCode string
	Status     domain.AttemptStatus

	token string
}

type Engine struct {
	store     *store.IntentStore
	resolver  *resolver.Resolver
	gateway   GatewayClient
	prompt    gateway.Prompt
	validator CouponValidator
	publisher *events.Publisher
	onSettled func(Attempt)

	mu      sync.Mutex
	session *pricing.Session
	attempt *Attempt
}

func NewEngine(
	s *store.IntentStore,
	r *resolver.Resolver,
	gw GatewayClient,
	prompt gateway.Prompt,
	validator CouponValidator,
	publisher *events.Publisher,
) *Engine {
	return &Engine{
		store:     s,
		resolver:  r,
		gateway:   gw,
		prompt:    prompt,
		validator: validator,
		publisher: publisher,
	}
}

// SetOnSettled registers the single success notification, delivered at
// most once per attempt (the caller navigates away on it).
func (e *Engine) SetOnSettled(fn func(Attempt)) {
	e.onSettled = fn
}

// LoadSession resolves the authoritative intent and builds a fresh
// pricing session from it. Any previously applied coupon is dropped;
// codes are re-validated per page load.
func (e *Engine) LoadSession(ctx context.Context) (*pricing.Session, error) {
	intent, err := e.resolver.Resolve(ctx)
	if errors.Is(err, resolver.ErrEmptyIntent) {
		return nil, ErrEmptyIntent
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve intent: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = pricing.NewSession(intent)
	return e.session, nil
}

// Session returns the current pricing session, or nil before LoadSession.
func (e *Engine) Session() *pricing.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// ApplyCoupon validates code against the current subtotal and applies the
// discount on acceptance. Every rejection — invalid code, unmet minimum,
// transport failure — resets the discount to zero.
func (e *Engine) ApplyCoupon(ctx context.Context, code string) (pricing.ValidationResult, error) {
	session, err := e.currentSession(ctx)
	if err != nil {
		return pricing.ValidationResult{}, err
	}

	result := e.validator.Validate(ctx, code, session.Subtotal())

	e.mu.Lock()
	defer e.mu.Unlock()
	if result.Accepted {
		session.ApplyCoupon(result.Coupon, result.DiscountAmount)
	} else {
		session.ClearCoupon()
	}
	return result, nil
}

// BeginPayment fixes the current session's lines and payable amount,
// creates a gateway order for it, and opens the interactive payment UI.
// Completion arrives later through HandlePaymentResult; control returns
// to the caller immediately.
//
// A failed order creation changes no state; a repeat call replaces any
// previous attempt (the old order is abandoned).
func (e *Engine) BeginPayment(ctx context.Context, token string) (*Attempt, error) {
	if token == "" {
		return nil, ErrAuthRequired
	}

	session, err := e.currentSession(ctx)
	if err != nil {
		return nil, err
	}
	if len(session.Lines) == 0 {
		return nil, ErrEmptyIntent
	}

	payable := session.Payable()
	if payable <= 0 {
		return nil, ErrInvalidAmount
	}

	order, err := e.gateway.CreateOrder(ctx, payable)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	lines := make([]domain.CartLine, len(session.Lines))
	copy(lines, session.Lines)

	attempt := &Attempt{
		ID:         uuid.New().String(),
		OrderID:    order.ID,
		Amount:     order.Amount,
		Currency:   order.Currency,
		Payable:    payable,
		Lines:      lines,
		CouponCode: session.CouponCode(),
		Status:     domain.AttemptStatusAwaitingPayment,
		token:      token,
	}

	// Persist the in-flight attempt so a reloaded context can still
	// accept the gateway callback. Best-effort.
	if err := e.store.WriteAttempt(ctx, store.AttemptRecord{
		AttemptID:  attempt.ID,
		OrderID:    attempt.OrderID,
		Amount:     attempt.Amount,
		Currency:   attempt.Currency,
		Payable:    attempt.Payable,
		Lines:      attempt.Lines,
		CouponCode: attempt.CouponCode,
		StartedAt:  time.Now(),
	}); err != nil {
		log.Printf("failed to persist in-flight attempt %v: %v", attempt.ID, err)
	}

	e.mu.Lock()
	e.attempt = attempt
	e.mu.Unlock()

	e.prompt.Open(*order, func(result domain.PaymentResult) {
		if err := e.HandlePaymentResult(context.Background(), result); err != nil {
			log.Printf("payment result for order %v not settled: %v", result.OrderID, err)
		}
	})

	return attempt, nil
}

// ResumeAttempt restores the in-flight attempt persisted by a previous
// context, so its gateway callback can still be handled after a reload.
func (e *Engine) ResumeAttempt(ctx context.Context, token string) (*Attempt, error) {
	rec, err := e.store.ReadAttempt(ctx)
	if errors.Is(err, store.ErrNoAttempt) {
		return nil, ErrNoAttempt
	}
	if err != nil {
		return nil, err
	}

	attempt := &Attempt{
		ID:         rec.AttemptID,
		OrderID:    rec.OrderID,
		Amount:     rec.Amount,
		Currency:   rec.Currency,
		Payable:    rec.Payable,
		Lines:      rec.Lines,
		CouponCode: rec.CouponCode,
		Status:     domain.AttemptStatusAwaitingPayment,
		token:      token,
	}

	e.mu.Lock()
	e.attempt = attempt
	e.mu.Unlock()
	return attempt, nil
}

// Attempt returns a copy of the in-flight attempt, or nil.
func (e *Engine) Attempt() *Attempt {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.attempt == nil {
		return nil
	}
	a := *e.attempt
	return &a
}

func (e *Engine) currentSession(ctx context.Context) (*pricing.Session, error) {
	e.mu.Lock()
	session := e.session
	e.mu.Unlock()

	if session != nil {
		return session, nil
	}
	return e.LoadSession(ctx)
}
