package cart

import (
	"context"
	"errors"

	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache is a read-through layer in front of the repository. Cache failures
// are never fatal; the store degrades to the repository.
type Cache interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Set(ctx context.Context, userID string, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}
