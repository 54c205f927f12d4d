package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the checkout API surface.
func NewRouter(cart *CartHandler, co *CheckoutHandler, requestTimeout time.Duration) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cart.GetCart)
			r.Delete("/", cart.ClearCart)
			r.Post("/items", cart.AddItem)
			r.Put("/items/{id}", cart.UpdateQuantity)
			r.Delete("/items/{id}", cart.RemoveItem)
		})

		r.Post("/buynow", co.BuyNow)
		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", co.BeginCheckout)
			r.Post("/coupon", co.ApplyCoupon)
			r.Post("/pay", co.Pay)
		})
		r.Post("/payment/callback", co.PaymentCallback)
	})

	return r
}
