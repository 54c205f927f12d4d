package gateway

import (
	"log"

	"github.com/03Sandip/gonotes-checkout/internal/domain"
)

// NopPrompt is the Prompt used when the interactive payment UI runs in
// another context entirely (the storefront opens the gateway widget) and
// completion arrives out-of-band through the payment callback endpoint.
type NopPrompt struct{}

func (NopPrompt) Open(order domain.Order, _ func(domain.PaymentResult)) {
	log.Printf("payment UI handed off for order %v (%d %s)", order.ID, order.Amount, order.Currency)
}
