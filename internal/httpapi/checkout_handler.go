package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/03Sandip/gonotes-checkout/internal/checkout"
	"github.com/03Sandip/gonotes-checkout/internal/domain"
	"github.com/03Sandip/gonotes-checkout/internal/gateway"
	"github.com/03Sandip/gonotes-checkout/internal/store"
)

type CheckoutHandler struct {
	store  *store.IntentStore
	engine *checkout.Engine
}

func NewCheckoutHandler(s *store.IntentStore, engine *checkout.Engine) *CheckoutHandler {
	return &CheckoutHandler{store: s, engine: engine}
}

type BuyNowRequestDTO struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

type CouponRequestDTO struct {
	Code string `json:"code"`
}

type CouponResponseDTO struct {
	Success        bool    `json:"success"`
	DiscountAmount float64 `json:"discountAmount"`
	Payable        float64 `json:"payable"`
	Message        string  `json:"message,omitempty"`
}

type PayResponseDTO struct {
	AttemptID string `json:"attempt_id"`
	OrderID   string `json:"order_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

// CallbackRequestDTO carries the gateway completion signal. The gateway's
// own field names take precedence; the plain aliases are accepted too.
type CallbackRequestDTO struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	OrderID           string `json:"orderId"`
	PaymentID         string `json:"paymentId"`
	Signature         string `json:"signature"`
}

func (c CallbackRequestDTO) toResult() domain.PaymentResult {
	result := domain.PaymentResult{
		OrderID:   c.RazorpayOrderID,
		PaymentID: c.RazorpayPaymentID,
		Signature: c.RazorpaySignature,
	}
	if result.OrderID == "" {
		result.OrderID = c.OrderID
	}
	if result.PaymentID == "" {
		result.PaymentID = c.PaymentID
	}
	if result.Signature == "" {
		result.Signature = c.Signature
	}
	return result
}

// BuyNow records a single-line "pay for this right now" intent.
func (h *CheckoutHandler) BuyNow(w http.ResponseWriter, r *http.Request) {
	var req BuyNowRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ID == "" || req.Title == "" || req.Price <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_item", "id, title and a positive price are required")
		return
	}
	if req.Qty < 1 {
		req.Qty = 1
	}

	intent := domain.PurchaseIntent{
		Source: domain.SlotBuyNow,
		Lines: []domain.CartLine{{
			ID:       req.ID,
			Title:    req.Title,
			Price:    req.Price,
			Quantity: domain.ClampQuantity(req.Qty),
		}},
	}
	if err := h.store.Write(r.Context(), domain.SlotBuyNow, intent); err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", "failed to record buy-now intent")
		return
	}
	respondJSON(w, http.StatusCreated, intent)
}

// BeginCheckout snapshots the cart for checkout and kills any pending
// buy-now intent, so later cart edits in another context cannot change
// this checkout.
func (h *CheckoutHandler) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	cart, err := h.store.Read(r.Context(), domain.SlotCart)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", "failed to read cart")
		return
	}
	if cart.IsEmpty() {
		respondError(w, http.StatusConflict, "empty_cart", "your cart is empty")
		return
	}

	if err := h.store.Clear(r.Context(), domain.SlotBuyNow); err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", "failed to clear buy-now intent")
		return
	}

	snapshot := domain.PurchaseIntent{Source: domain.SlotCheckoutSnapshot, Lines: cart.Lines}
	if err := h.store.Write(r.Context(), domain.SlotCheckoutSnapshot, snapshot); err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", "failed to snapshot cart")
		return
	}

	session, err := h.engine.LoadSession(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "resolve_error", "failed to resolve intent")
		return
	}
	respondJSON(w, http.StatusOK, CartResponseDTO{Lines: session.Lines, Subtotal: session.Subtotal()})
}

// ApplyCoupon validates a code against the resolved subtotal.
func (h *CheckoutHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req CouponRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.engine.ApplyCoupon(r.Context(), strings.ToUpper(strings.TrimSpace(req.Code)))
	if errors.Is(err, checkout.ErrEmptyIntent) {
		respondError(w, http.StatusConflict, "empty_intent", "add at least one item first")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "resolve_error", "failed to resolve intent")
		return
	}

	status := http.StatusOK
	if !result.Accepted {
		status = http.StatusUnprocessableEntity
	}
	payable := result.Payable
	if session := h.engine.Session(); session != nil {
		payable = session.Payable()
	}
	respondJSON(w, status, CouponResponseDTO{
		Success:        result.Accepted,
		DiscountAmount: result.DiscountAmount,
		Payable:        payable,
		Message:        result.Message,
	})
}

// Pay begins the payment for the current session.
func (h *CheckoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.engine.BeginPayment(r.Context(), bearerToken(r))
	switch {
	case errors.Is(err, checkout.ErrAuthRequired):
		respondError(w, http.StatusUnauthorized, "auth_required", "please log in before making a payment")
		return
	case errors.Is(err, checkout.ErrEmptyIntent):
		respondError(w, http.StatusConflict, "empty_intent", "add at least one item before paying")
		return
	case errors.Is(err, checkout.ErrInvalidAmount):
		respondError(w, http.StatusBadRequest, "invalid_amount", "payable amount must be positive")
		return
	case err != nil:
		respondError(w, http.StatusBadGateway, "order_creation_failed", "we could not create your order, please try again")
		return
	}

	respondJSON(w, http.StatusAccepted, PayResponseDTO{
		AttemptID: attempt.ID,
		OrderID:   attempt.OrderID,
		Amount:    attempt.Amount,
		Currency:  attempt.Currency,
	})
}

// PaymentCallback receives the gateway completion signal and runs
// settlement. A verification failure is surfaced, never swallowed: the
// intent store stays intact so the purchase can be retried.
func (h *CheckoutHandler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	var req CallbackRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	result := req.toResult()
	if result.OrderID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "order id is required")
		return
	}

	err := h.engine.HandlePaymentResult(r.Context(), result)
	if errors.Is(err, checkout.ErrNoAttempt) {
		// This context may have been reloaded mid-payment; pick the
		// persisted attempt back up and retry once.
		if _, rerr := h.engine.ResumeAttempt(r.Context(), bearerToken(r)); rerr == nil {
			err = h.engine.HandlePaymentResult(r.Context(), result)
		}
	}

	switch {
	case errors.Is(err, checkout.ErrNoAttempt):
		respondError(w, http.StatusConflict, "no_attempt", "no payment attempt in flight")
		return
	case errors.Is(err, checkout.ErrUnknownOrder):
		respondError(w, http.StatusConflict, "unknown_order", "payment result does not match the current order")
		return
	case errors.Is(err, checkout.ErrAttemptFailed):
		respondError(w, http.StatusConflict, "attempt_failed", "this payment already failed verification; your cart is preserved, please retry the payment")
		return
	case errors.Is(err, gateway.ErrVerification), err != nil:
		respondError(w, http.StatusBadGateway, "verification_failed", "payment could not be confirmed; your cart is preserved, please contact support if you were charged")
		return
	}

	status := domain.AttemptStatusSettled
	if attempt := h.engine.Attempt(); attempt != nil {
		status = attempt.Status
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": status == domain.AttemptStatusSettled,
		"status":  status.String(),
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}
