package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"github.com/03Sandip/gonotes-checkout/internal/domain"
)

// ValidationResult is the outcome of a coupon validation. A rejected
// result always means the session discount must be reset; Retryable
// distinguishes "the server said no" from "we could not ask".
type ValidationResult struct {
	Accepted       bool
	DiscountAmount float64
	Payable        float64
	Coupon         domain.Coupon
	Message        string
	Retryable      bool
}

// CouponValidator is a client to the pricing service. It holds no local
// discount logic: every accepted discount comes from the server.
type CouponValidator struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*validateResponse]
	sfg     singleflight.Group // Collapses concurrent identical validations
}

func NewCouponValidator(baseURL string, timeout time.Duration) *CouponValidator {
	breaker := gobreaker.NewCircuitBreaker[*validateResponse](gobreaker.Settings{
		Name:    "coupon-validate",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &CouponValidator{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: breaker,
	}
}

type validateRequest struct {
	Code     string  `json:"code"`
	Subtotal float64 `json:"subtotal"`
}

type validateResponse struct {
	Success        bool    `json:"success"`
	DiscountAmount float64 `json:"discountAmount"`
	Payable        float64 `json:"payable"`
	DiscountType   string  `json:"discountType"`
	DiscountValue  float64 `json:"discountValue"`
	Message        string  `json:"message"`
}

// Validate checks a code against the given subtotal. Validation is
// idempotent: the same code against an unchanged subtotal yields the same
// result, and concurrent identical calls are collapsed into one request.
func (v *CouponValidator) Validate(ctx context.Context, code string, subtotal float64) ValidationResult {
	if code == "" {
		return ValidationResult{Message: "Enter a coupon code."}
	}
	if subtotal <= 0 {
		return ValidationResult{Message: "Add at least one note first."}
	}

	key := fmt.Sprintf("%s|%.2f", code, subtotal)
	resp, err, _ := v.sfg.Do(key, func() (interface{}, error) {
		return v.breaker.Execute(func() (*validateResponse, error) {
			return v.post(ctx, code, subtotal)
		})
	})
	if err != nil {
		log.Printf("coupon validation failed for %q: %v", code, err)
		return ValidationResult{
			Message:   "Could not validate coupon. Please try again.",
			Retryable: true,
		}
	}

	vr := resp.(*validateResponse)
	if !vr.Success {
		message := vr.Message
		if message == "" {
			message = "Invalid coupon."
		}
		return ValidationResult{Message: message}
	}

	return ValidationResult{
		Accepted:       true,
		DiscountAmount: vr.DiscountAmount,
		Payable:        vr.Payable,
		Message:        vr.Message,
		Coupon: domain.Coupon{
			Code:          code,
			DiscountType:  domain.DiscountType(vr.DiscountType),
			DiscountValue: vr.DiscountValue,
		},
	}
}

func (v *CouponValidator) post(ctx context.Context, code string, subtotal float64) (*validateResponse, error) {
	body, err := json.Marshal(validateRequest{Code: code, Subtotal: subtotal})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal validate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/coupons/validate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build validate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("validate request failed: %w", err)
	}
	defer res.Body.Close()

	var vr validateResponse
	if err := json.NewDecoder(res.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("failed to decode validate response: %w", err)
	}

	// Non-2xx is a rejection, not a transport failure; keep the server's
	// message when it sent one.
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		vr.Success = false
	}
	return &vr, nil
}
