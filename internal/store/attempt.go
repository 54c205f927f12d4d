package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/03Sandip/gonotes-checkout/internal/domain"
)

var ErrNoAttempt = errors.New("no in-flight attempt")

// AttemptRecord is the persisted shape of an in-flight checkout attempt.
// Keeping it in the store lets a reloaded context pick up the gateway
// callback for an order it did not create. The auth token is deliberately
// not part of the record.
type AttemptRecord struct {
	AttemptID  string            `json:"attempt_id"`
	OrderID    string            `json:"order_id"`
	Amount     int64             `json:"amount"`
	Currency   string            `json:"currency"`
	Payable    float64           `json:"payable"`
	Lines      []domain.CartLine `json:"lines"`
	CouponCode string            `json:"coupon_code,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
}

// WriteAttempt replaces any previously persisted attempt.
func (s *IntentStore) WriteAttempt(ctx context.Context, rec AttemptRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal attempt: %w", err)
	}
	if err := s.kv.Set(ctx, keyAttempt, raw); err != nil {
		return fmt.Errorf("failed to write attempt: %w", err)
	}
	return nil
}

// ReadAttempt returns the persisted in-flight attempt, or ErrNoAttempt.
func (s *IntentStore) ReadAttempt(ctx context.Context) (AttemptRecord, error) {
	var rec AttemptRecord

	raw, err := s.kv.Get(ctx, keyAttempt)
	if errors.Is(err, ErrNotFound) {
		return rec, ErrNoAttempt
	}
	if err != nil {
		return rec, fmt.Errorf("failed to read attempt: %w", err)
	}

	if err := json.Unmarshal(raw, &rec); err != nil || rec.OrderID == "" {
		// A malformed attempt record is unrecoverable; treat as absent.
		return AttemptRecord{}, ErrNoAttempt
	}
	return rec, nil
}

// ClearAttempt removes the persisted attempt.
func (s *IntentStore) ClearAttempt(ctx context.Context) error {
	if err := s.kv.Delete(ctx, keyAttempt); err != nil {
		return fmt.Errorf("failed to clear attempt: %w", err)
	}
	return nil
}
