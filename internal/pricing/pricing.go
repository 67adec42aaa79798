// Package pricing computes cart money fields. Everything here is pure:
// output depends only on input and no call has side effects.
package pricing

import "github.com/Tjay-cmd/apex-nutrition-sub001/internal/domain"

const (
	// FreeShippingThreshold is the subtotal at which shipping becomes free.
	FreeShippingThreshold = 500.0
	// FlatShippingFee applies below the threshold.
	FlatShippingFee = 99.0
	// VATRate is the flat value-added tax rate applied to the subtotal.
	VATRate = 0.15
)

// Summary is the derived order summary. It is recomputed on every cart or
// checkout step change, never stored.
type Summary struct {
	Subtotal float64           `json:"subtotal"`
	Shipping float64           `json:"shipping"`
	Tax      float64           `json:"tax"`
	Total    float64           `json:"total"`
	Items    []domain.LineItem `json:"items"`
}

// Subtotal sums unit price times quantity over well-formed items. Items
// with a non-positive quantity or price are skipped rather than rejected,
// which tolerates partially corrupt persisted state.
func Subtotal(items []domain.LineItem) float64 {
	var sum float64
	for _, it := range items {
		if it.Quantity <= 0 || it.UnitPrice() <= 0 {
			continue
		}
		sum += it.UnitPrice() * float64(it.Quantity)
	}
	return sum
}

// Shipping returns the shipping cost for a given subtotal. Note the
// empty-cart override lives in Summarize: an empty cart owes nothing even
// though this formula would charge the flat fee for a zero subtotal.
func Shipping(subtotal float64) float64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

// Tax applies the VAT rate to the subtotal.
func Tax(subtotal float64) float64 {
	return subtotal * VATRate
}

// Total computes the grand total: subtotal + shipping + tax, or 0 for an
// empty item set.
func Total(items []domain.LineItem) float64 {
	if len(items) == 0 {
		return 0
	}
	sub := Subtotal(items)
	return sub + Shipping(sub) + Tax(sub)
}

// Summarize derives the full summary for a set of line items. An empty
// cart must never appear to owe a shipping fee, so shipping and total are
// forced to zero when there are no items.
func Summarize(items []domain.LineItem) Summary {
	if len(items) == 0 {
		return Summary{Items: []domain.LineItem{}}
	}
	sub := Subtotal(items)
	s := Summary{
		Subtotal: sub,
		Shipping: Shipping(sub),
		Tax:      Tax(sub),
		Items:    items,
	}
	s.Total = s.Subtotal + s.Shipping + s.Tax
	return s
}
