package domain

// Order is a payment order created by the gateway. Amount is in minor
// currency units (paise), as returned by the create-order endpoint.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PaymentResult is the completion signal delivered by the gateway exactly
// once per order. It must be verified server-side before being trusted.
type PaymentResult struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}
