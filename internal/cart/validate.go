package cart

import (
	"errors"
	"fmt"

	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/domain"
)

var ErrCorruptCart = errors.New("restored cart failed validation")

// ValidateRestored checks every entry of a restored cart against the
// schema: a named product with a positive price and a quantity of at
// least one. The policy is fail-closed: one bad entry condemns the whole
// cart, which keeps a corrupt row from silently hiding peer items or
// breaking total computation downstream. The returned error names the
// first offending entry.
func ValidateRestored(cart *domain.Cart) error {
	if cart == nil {
		return nil
	}
	for i, it := range cart.Items {
		if !it.Valid() {
			return fmt.Errorf("%w: entry %d (product_id=%q)", ErrCorruptCart, i, it.ProductID)
		}
	}
	return nil
}
