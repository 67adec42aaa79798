package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/cart"
	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	carts   *cart.Manager
	timeout time.Duration
}

func NewCartHandler(carts *cart.Manager, timeout time.Duration) *CartHandler {
	return &CartHandler{carts: carts, timeout: timeout}
}

type AddItemRequestDTO struct {
	Product  domain.Product         `json:"product"`
	Quantity int                    `json:"quantity"`
	Options  domain.SelectedOptions `json:"selected_options"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// CartResponseDTO is the cart as the storefront pages consume it: the
// line items plus the derived summary.
type CartResponseDTO struct {
	Items      []domain.LineItem `json:"items"`
	TotalItems int               `json:"total_items"`
	Subtotal   float64           `json:"subtotal"`
	Shipping   float64           `json:"shipping"`
	Tax        float64           `json:"tax"`
	Total      float64           `json:"total"`
}

func cartResponse(s *cart.Store) CartResponseDTO {
	summary := s.Summary()
	return CartResponseDTO{
		Items:      summary.Items,
		TotalItems: s.TotalItems(),
		Subtotal:   summary.Subtotal,
		Shipping:   summary.Shipping,
		Tax:        summary.Tax,
		Total:      summary.Total,
	}
}

func (h *CartHandler) store(w http.ResponseWriter, r *http.Request) (*cart.Store, context.Context, context.CancelFunc, bool) {
	identity := identityFromContext(r.Context())
	if identity.ID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return nil, nil, nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	store, err := h.carts.Get(ctx, identity.ID)
	if err != nil {
		cancel()
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return nil, nil, nil, false
	}
	return store, ctx, cancel, true
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, _, cancel, ok := h.store(w, r)
	if !ok {
		return
	}
	defer cancel()

	respondJSON(w, http.StatusOK, cartResponse(store))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	store, ctx, cancel, ok := h.store(w, r)
	if !ok {
		return
	}
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Product.ID == "" || req.Product.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_product", "product id and name are required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	store.AddItem(ctx, req.Product, req.Quantity, req.Options)
	respondJSON(w, http.StatusCreated, cartResponse(store))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	store, ctx, cancel, ok := h.store(w, r)
	if !ok {
		return
	}
	defer cancel()

	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	// Zero and below removes the item; the store owns that rule.
	store.UpdateQuantity(ctx, itemID, req.Quantity)
	respondJSON(w, http.StatusOK, cartResponse(store))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store, ctx, cancel, ok := h.store(w, r)
	if !ok {
		return
	}
	defer cancel()

	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id is required")
		return
	}

	store.RemoveItem(ctx, itemID)
	respondJSON(w, http.StatusOK, cartResponse(store))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, ctx, cancel, ok := h.store(w, r)
	if !ok {
		return
	}
	defer cancel()

	store.Clear(ctx)
	respondJSON(w, http.StatusOK, cartResponse(store))
}
