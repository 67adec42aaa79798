package cart

import (
	"context"
	"errors"

	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// Repository is the durable side of the cart store. The store persists its
// full working set after every mutation, so the interface is document
// granular: load, replace, delete.
//
// Consumers define this interface, not the MongoDB implementation.
type Repository interface {
	Load(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}
