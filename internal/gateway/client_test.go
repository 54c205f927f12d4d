package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/03Sandip/gonotes-checkout/internal/domain"
)

func gatewayServer(t *testing.T, createOrder, verify http.HandlerFunc) *Client {
	t.Helper()
	mux := http.NewServeMux()
	if createOrder != nil {
		mux.HandleFunc("/payment/create-order", createOrder)
	}
	if verify != nil {
		mux.HandleFunc("/payment/verify", verify)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestCreateOrderSuccess(t *testing.T) {
	sut := gatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.InDelta(t, 180.0, req.Amount, 1e-9)

		w.Write([]byte(`{"success":true,"order":{"id":"ord_1","amount":18000}}`))
	}, nil)

	order, err := sut.CreateOrder(context.Background(), 180)
	require.NoError(t, err)
	assert.Equal(t, "ord_1", order.ID)
	assert.Equal(t, int64(18000), order.Amount)
	assert.Equal(t, "INR", order.Currency)
}

func TestCreateOrderRefused(t *testing.T) {
	sut := gatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	}, nil)

	_, err := sut.CreateOrder(context.Background(), 180)
	assert.ErrorIs(t, err, ErrOrderCreation)
}

func TestCreateOrderTransportFailure(t *testing.T) {
	sut := NewClient("http://127.0.0.1:1", time.Second)

	_, err := sut.CreateOrder(context.Background(), 180)
	assert.ErrorIs(t, err, ErrOrderCreation)
}

func TestVerifySuccess(t *testing.T) {
	lines := []domain.CartLine{{ID: "n1", Title: "Algebra Notes", Price: 100, Quantity: 2}}

	sut := gatewayServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		var req verifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ord_1", req.OrderID)
		assert.Equal(t, "pay_1", req.PaymentID)
		assert.Equal(t, "sig_1", req.Signature)
		assert.Equal(t, lines, req.Cart)
		require.NotNil(t, req.CouponCode)
		assert.Equal(t, "SAVE10", *req.CouponCode)

		w.Write([]byte(`{"success":true}`))
	})

	err := sut.Verify(context.Background(), "tok-1",
		domain.PaymentResult{OrderID: "ord_1", PaymentID: "pay_1", Signature: "sig_1"},
		lines, "SAVE10")
	require.NoError(t, err)
}

func TestVerifyNoCouponSendsNull(t *testing.T) {
	sut := gatewayServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, "null", string(raw["appliedCouponCode"]))

		w.Write([]byte(`{"success":true}`))
	})

	err := sut.Verify(context.Background(), "tok-1", domain.PaymentResult{OrderID: "ord_1"}, nil, "")
	require.NoError(t, err)
}

func TestVerifyRejectedCarriesMessage(t *testing.T) {
	sut := gatewayServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"signature mismatch"}`))
	})

	err := sut.Verify(context.Background(), "tok-1", domain.PaymentResult{OrderID: "ord_1"}, nil, "")
	require.ErrorIs(t, err, ErrVerification)
	assert.Contains(t, err.Error(), "signature mismatch")
}
