package pricing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/03Sandip/gonotes-checkout/internal/domain"
)

func couponServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/coupons/validate", handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestValidateAccepted(t *testing.T) {
	srv := couponServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req validateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "SAVE10", req.Code)
		assert.InDelta(t, 1000.0, req.Subtotal, 1e-9)

		json.NewEncoder(w).Encode(validateResponse{
			Success:        true,
			DiscountAmount: 100,
			Payable:        900,
			DiscountType:   "percentage",
			DiscountValue:  10,
		})
	})

	sut := NewCouponValidator(srv.URL, 5*time.Second)
	result := sut.Validate(context.Background(), "SAVE10", 1000)

	assert.True(t, result.Accepted)
	assert.InDelta(t, 100.0, result.DiscountAmount, 1e-9)
	assert.InDelta(t, 900.0, result.Payable, 1e-9)
	assert.Equal(t, domain.DiscountTypePercentage, result.Coupon.DiscountType)
}

func TestValidateIdempotent(t *testing.T) {
	var calls atomic.Int32
	srv := couponServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(validateResponse{
			Success:        true,
			DiscountAmount: 100,
			Payable:        900,
		})
	})

	sut := NewCouponValidator(srv.URL, 5*time.Second)

	first := sut.Validate(context.Background(), "SAVE10", 1000)
	second := sut.Validate(context.Background(), "SAVE10", 1000)

	assert.Equal(t, first.DiscountAmount, second.DiscountAmount)
	assert.Equal(t, first.Accepted, second.Accepted)
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestValidateServerRejection(t *testing.T) {
	srv := couponServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(validateResponse{
			Success: false,
			Message: "Coupon expired.",
		})
	})

	sut := NewCouponValidator(srv.URL, 5*time.Second)
	result := sut.Validate(context.Background(), "OLD", 1000)

	assert.False(t, result.Accepted)
	assert.False(t, result.Retryable)
	assert.Equal(t, "Coupon expired.", result.Message)
}

func TestValidateNon2xxIsRejection(t *testing.T) {
	srv := couponServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(validateResponse{Message: "Minimum order not met."})
	})

	sut := NewCouponValidator(srv.URL, 5*time.Second)
	result := sut.Validate(context.Background(), "MIN500", 100)

	assert.False(t, result.Accepted)
	assert.False(t, result.Retryable)
	assert.Equal(t, "Minimum order not met.", result.Message)
}

func TestValidateTransportFailureIsRetryable(t *testing.T) {
	srv := couponServer(t, func(w http.ResponseWriter, r *http.Request) {})
	url := srv.URL
	srv.Close()

	sut := NewCouponValidator(url, time.Second)
	result := sut.Validate(context.Background(), "SAVE10", 1000)

	assert.False(t, result.Accepted)
	assert.True(t, result.Retryable)
	assert.Contains(t, result.Message, "try again")
}

func TestValidateLocalPreconditions(t *testing.T) {
	// No server: local rejects must not hit the network at all.
	sut := NewCouponValidator("http://127.0.0.1:1", time.Second)

	empty := sut.Validate(context.Background(), "", 1000)
	assert.False(t, empty.Accepted)
	assert.False(t, empty.Retryable)

	zero := sut.Validate(context.Background(), "SAVE10", 0)
	assert.False(t, zero.Accepted)
	assert.False(t, zero.Retryable)
}
