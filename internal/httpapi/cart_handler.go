package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/03Sandip/gonotes-checkout/internal/domain"
	"github.com/03Sandip/gonotes-checkout/internal/store"
)

type CartHandler struct {
	store *store.IntentStore
}

func NewCartHandler(s *store.IntentStore) *CartHandler {
	return &CartHandler{store: s}
}

type AddItemRequestDTO struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

type UpdateQuantityRequestDTO struct {
	Qty int `json:"qty"`
}

type CartResponseDTO struct {
	Lines    []domain.CartLine `json:"lines"`
	Subtotal float64           `json:"subtotal"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.store.Read(r.Context(), domain.SlotCart)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", "failed to read cart")
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(cart.Lines))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ID == "" || req.Title == "" {
		respondError(w, http.StatusBadRequest, "invalid_item", "id and title are required")
		return
	}
	if req.Price < 0 {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must not be negative")
		return
	}
	if req.Qty <= 0 || req.Qty > domain.MaxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	line := domain.CartLine{ID: req.ID, Title: req.Title, Price: req.Price, Quantity: req.Qty}
	if err := h.store.AddLine(r.Context(), line); err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", "failed to add item")
		return
	}

	cart, err := h.store.Read(r.Context(), domain.SlotCart)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", "failed to read cart")
		return
	}
	respondJSON(w, http.StatusCreated, cartResponse(cart.Lines))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	err := h.store.UpdateQuantity(r.Context(), id, req.Qty)
	if errors.Is(err, store.ErrItemNotFound) {
		respondError(w, http.StatusNotFound, "item_not_found", "item not in cart")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", "failed to update quantity")
		return
	}

	cart, err := h.store.Read(r.Context(), domain.SlotCart)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", "failed to read cart")
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(cart.Lines))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.store.RemoveLine(r.Context(), id)
	if errors.Is(err, store.ErrItemNotFound) {
		respondError(w, http.StatusNotFound, "item_not_found", "item not in cart")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", "failed to remove item")
		return
	}

	cart, err := h.store.Read(r.Context(), domain.SlotCart)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", "failed to read cart")
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(cart.Lines))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context(), domain.SlotCart); err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", "failed to clear cart")
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(nil))
}

func cartResponse(lines []domain.CartLine) CartResponseDTO {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return CartResponseDTO{Lines: lines, Subtotal: domain.Subtotal(lines)}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
