// Package order turns a validated checkout session into persisted order
// records.
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/cart"
	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/checkout"
	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrNotAuthenticated = errors.New("no authenticated identity")
	ErrEmptyCart        = errors.New("cart is empty, nothing to submit")
)

// ValidationError reports the field errors that blocked submission.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout validation failed for %d field(s)", len(e.Fields))
}

// SubmissionService is the terminal operation of the checkout flow. It
// writes the order; it deliberately does not clear the cart, so a failed
// submission never costs the customer their items. The caller clears the
// cart and resets the session after success.
type SubmissionService struct {
	repo Repository
	log  *slog.Logger
}

func NewSubmissionService(repo Repository, log *slog.Logger) *SubmissionService {
	return &SubmissionService{repo: repo, log: log}
}

// Submit checks the preconditions, snapshots the order summary at call
// time, and persists the order with one line per cart item. Later cart
// mutations cannot retroactively change a submitted order: every line
// carries the unit price captured here, never a live catalog lookup.
func (s *SubmissionService) Submit(
	ctx context.Context,
	identity domain.Identity,
	session *checkout.Session,
	store *cart.Store,
) (uuid.UUID, error) {

	if identity.ID == "" {
		return uuid.Nil, ErrNotAuthenticated
	}

	summary := store.Summary()
	if len(summary.Items) == 0 {
		return uuid.Nil, ErrEmptyCart
	}

	if fieldErrs, ok := session.CanSubmit(); !ok {
		if len(fieldErrs) > 0 {
			return uuid.Nil, &ValidationError{Fields: fieldErrs}
		}
		return uuid.Nil, fmt.Errorf("checkout session is not at the payment step")
	}

	orderID := uuid.New()
	lines := make([]domain.OrderLine, 0, len(summary.Items))
	for _, it := range summary.Items {
		lines = append(lines, domain.OrderLine{
			ID:          uuid.New(),
			OrderID:     orderID,
			ProductID:   it.ProductID,
			ProductName: it.Product.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice(),
			LineTotal:   it.UnitPrice() * float64(it.Quantity),
			Options:     it.SelectedOptions,
		})
	}

	ord := &domain.Order{
		ID:              orderID,
		UserID:          identity.ID,
		UserEmail:       identity.Email,
		Status:          domain.OrderStatusPending,
		Subtotal:        summary.Subtotal,
		Shipping:        summary.Shipping,
		Tax:             summary.Tax,
		Total:           summary.Total,
		ShippingAddress: session.ShippingAddress(),
		BillingAddress:  session.BillingAddress(),
		Payment:         session.Payment().Descriptor(),
		Lines:           lines,
	}

	if err := s.repo.CreateOrder(ctx, ord); err != nil {
		s.log.Error("order submission failed", "user_id", identity.ID, "error", err)
		return uuid.Nil, fmt.Errorf("failed to create order: %w", err)
	}

	session.MarkSubmitted()
	s.log.Info("order submitted",
		"order_id", orderID,
		"user_id", identity.ID,
		"total", ord.Total,
		"lines", len(ord.Lines))

	return orderID, nil
}
