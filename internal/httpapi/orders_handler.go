package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/cart"
	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/checkout"
	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/order"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrdersHandler struct {
	service  *order.SubmissionService
	repo     order.Repository
	carts    *cart.Manager
	sessions *checkout.Manager
	timeout  time.Duration
}

func NewOrdersHandler(
	service *order.SubmissionService,
	repo order.Repository,
	carts *cart.Manager,
	sessions *checkout.Manager,
	timeout time.Duration,
) *OrdersHandler {
	return &OrdersHandler{
		service:  service,
		repo:     repo,
		carts:    carts,
		sessions: sessions,
		timeout:  timeout,
	}
}

type SubmitResponseDTO struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id"`
}

// Submit turns the validated checkout session into a persisted order. On
// success the cart is cleared and the checkout session reset here, in the
// caller, never inside the submission service; a failed submission keeps
// the customer's items.
func (h *OrdersHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity.ID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store, err := h.carts.Get(ctx, identity.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}
	sess := h.sessions.Get(identity.ID)

	orderID, err := h.service.Submit(ctx, identity, sess, store)
	if err != nil {
		var vErr *order.ValidationError
		switch {
		case errors.Is(err, order.ErrEmptyCart):
			respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty")
		case errors.As(err, &vErr):
			respondFieldErrors(w, vErr.Fields)
		default:
			// Binary success/fail: no partial-success state is ever
			// reported to the caller.
			respondError(w, http.StatusBadGateway, "order_failed", "order could not be created")
		}
		return
	}

	store.Clear(ctx)
	h.sessions.Reset(identity.ID)

	respondJSON(w, http.StatusCreated, SubmitResponseDTO{Success: true, OrderID: orderID.String()})
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity.ID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.repo.ListOrdersByUserID(ctx, identity.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list orders")
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity.ID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id must be a UUID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ord, err := h.repo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "order not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load order")
		return
	}

	// Customers only see their own orders.
	if ord.UserID != identity.ID {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}

	respondJSON(w, http.StatusOK, ord)
}
