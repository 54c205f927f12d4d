// Package events publishes settled purchases so downstream consumers
// (order history, notes unlocking) can react without being in the
// settlement path.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/03Sandip/gonotes-checkout/internal/domain"
)

const Topic = "purchase-settled"

// SettledEvent is the payload published once per settled attempt.
type SettledEvent struct {
	AttemptID string            `json:"attempt_id"`
	OrderID   string            `json:"order_id"`
	PaymentID string            `json:"payment_id"`
	Lines     []domain.CartLine `json:"lines"`
	Amount    int64             `json:"amount"`
	SettledAt time.Time         `json:"settled_at"`
}

// messageWriter is the slice of kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Publisher struct {
	writer  messageWriter
	timeout time.Duration
}

func NewPublisher(brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, timeout: 5 * time.Second}
}

// PublishSettled is best-effort: settlement has already committed when it
// runs, so a broker failure is logged and dropped, never propagated.
func (p *Publisher) PublishSettled(ctx context.Context, event SettledEvent) {
	if p == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal settled event for order %v: %v", event.OrderID, err)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: payload,
	})
	if err != nil {
		log.Printf("failed to publish settled event for order %v: %v", event.OrderID, err)
	}
}
