package checkout

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/03Sandip/gonotes-checkout/internal/domain"
	"github.com/03Sandip/gonotes-checkout/internal/events"
)

// HandlePaymentResult is the single settlement path for a gateway
// completion signal. It verifies the payment server-side and, only on
// confirmed success, clears the intent store and notifies the caller.
//
// Exactly-once: the AwaitingPayment -> Verifying transition is taken
// under the lock, so a duplicate callback for the same order — a second
// gateway delivery, a duplicated tab — finds the attempt already past
// AwaitingPayment and becomes a no-op. The store is never touched before
// verification succeeds, and a Verifying attempt is never re-submitted
// automatically.
func (e *Engine) HandlePaymentResult(ctx context.Context, result domain.PaymentResult) error {
	e.mu.Lock()
	attempt := e.attempt
	if attempt == nil {
		e.mu.Unlock()
		return ErrNoAttempt
	}
	if result.OrderID != attempt.OrderID {
		e.mu.Unlock()
		return fmt.Errorf("%w: got %v, expected %v", ErrUnknownOrder, result.OrderID, attempt.OrderID)
	}
	if !domain.CanTransitionTo(attempt.Status, domain.AttemptStatusVerifying) {
		// Duplicate delivery; the first one owns the outcome. A settled
		// attempt absorbs the redelivery silently, but a failed one must
		// keep reporting the failure, never a phantom success.
		status := attempt.Status
		log.Printf("ignoring duplicate payment result for order %v in status %v", result.OrderID, status)
		e.mu.Unlock()
		if status == domain.AttemptStatusFailed {
			return fmt.Errorf("%w: order %v", ErrAttemptFailed, result.OrderID)
		}
		return nil
	}
	attempt.Status = domain.AttemptStatusVerifying
	snapshot := *attempt
	e.mu.Unlock()

	err := e.gateway.Verify(ctx, snapshot.token, result, snapshot.Lines, snapshot.CouponCode)
	if err != nil {
		// Money may have moved without confirmed settlement: surface
		// loudly, keep the intent store intact so the user can retry.
		e.mu.Lock()
		attempt.Status = domain.AttemptStatusFailed
		e.mu.Unlock()
		return fmt.Errorf("verification failed for order %v: %w", result.OrderID, err)
	}

	e.mu.Lock()
	attempt.Status = domain.AttemptStatusSettled
	settled := *attempt
	e.mu.Unlock()

	if err := e.store.ClearAll(ctx); err != nil {
		// The purchase is settled server-side regardless; a stale slot
		// only risks re-showing already-bought items.
		log.Printf("failed to clear intent store after settling order %v: %v", result.OrderID, err)
	}

	e.publisher.PublishSettled(ctx, events.SettledEvent{
		AttemptID: settled.ID,
		OrderID:   settled.OrderID,
		PaymentID: result.PaymentID,
		Lines:     settled.Lines,
		Amount:    settled.Amount,
		SettledAt: time.Now(),
	})

	if e.onSettled != nil {
		e.onSettled(settled)
	}
	return nil
}
