// Package gateway is the client side of the payment gateway contract:
// order creation and server verification over REST, plus the opaque
// interactive payment prompt.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/03Sandip/gonotes-checkout/internal/domain"
)

var (
	ErrOrderCreation = errors.New("order creation failed")
	ErrVerification  = errors.New("payment verification failed")
)

// Prompt opens the gateway's interactive payment UI for an order. The UI
// is modal for the user but asynchronous for the program: Open returns
// immediately and done is invoked later with the payment result, or never
// (the user may abandon the UI).
type Prompt interface {
	Open(order domain.Order, done func(domain.PaymentResult))
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type createOrderRequest struct {
	Amount float64 `json:"amount"`
}

type createOrderResponse struct {
	Success bool `json:"success"`
	Order   *struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"order"`
}

// CreateOrder asks the gateway for a payment order covering amount
// (display currency units; the returned order amount is in minor units).
func (c *Client) CreateOrder(ctx context.Context, amount float64) (*domain.Order, error) {
	body, err := json.Marshal(createOrderRequest{Amount: amount})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payment/create-order", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderCreation, err)
	}
	defer res.Body.Close()

	var cr createOrderResponse
	if err := json.NewDecoder(res.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("%w: invalid response: %v", ErrOrderCreation, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 || !cr.Success || cr.Order == nil {
		return nil, ErrOrderCreation
	}

	currency := cr.Order.Currency
	if currency == "" {
		currency = "INR"
	}
	return &domain.Order{
		ID:       cr.Order.ID,
		Amount:   cr.Order.Amount,
		Currency: currency,
	}, nil
}

// verifyRequest carries the gateway's field names as the server expects
// them, plus the purchased lines and coupon for server-side dedupe.
type verifyRequest struct {
	OrderID    string            `json:"razorpay_order_id"`
	PaymentID  string            `json:"razorpay_payment_id"`
	Signature  string            `json:"razorpay_signature"`
	Cart       []domain.CartLine `json:"cart"`
	CouponCode *string           `json:"appliedCouponCode"`
}

type verifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Verify forwards a payment result to server verification. The server
// dedupes by order id; the client never retries this call on its own.
func (c *Client) Verify(ctx context.Context, token string, result domain.PaymentResult, lines []domain.CartLine, couponCode string) error {
	vr := verifyRequest{
		OrderID:   result.OrderID,
		PaymentID: result.PaymentID,
		Signature: result.Signature,
		Cart:      lines,
	}
	if couponCode != "" {
		vr.CouponCode = &couponCode
	}

	body, err := json.Marshal(vr)
	if err != nil {
		return fmt.Errorf("failed to marshal verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payment/verify", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	defer res.Body.Close()

	var out verifyResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return fmt.Errorf("%w: invalid response: %v", ErrVerification, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 || !out.Success {
		if out.Message != "" {
			return fmt.Errorf("%w: %s", ErrVerification, out.Message)
		}
		return ErrVerification
	}
	return nil
}
