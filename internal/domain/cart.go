package domain

import "time"

// Product is the subset of the catalog entry the cart needs. The full
// catalog document carries marketing copy and images; none of that is
// relevant here.
type Product struct {
	ID    string  `bson:"id" json:"id"`
	Name  string  `bson:"name" json:"name"`
	Price float64 `bson:"price" json:"price"`
}

// SelectedOptions distinguishes variants of the same product. Two line
// items with equal product id but different options are separate rows.
type SelectedOptions struct {
	Flavor string `bson:"flavor,omitempty" json:"flavor,omitempty"`
	Size   string `bson:"size,omitempty" json:"size,omitempty"`
}

// Key returns a stable string form used for merge matching.
func (o SelectedOptions) Key() string {
	return o.Flavor + "|" + o.Size
}

type LineItem struct {
	ID              string          `bson:"id" json:"id"`
	ProductID       string          `bson:"product_id" json:"product_id"`
	Quantity        int             `bson:"quantity" json:"quantity"`
	Product         Product         `bson:"product" json:"product"`
	SelectedOptions SelectedOptions `bson:"selected_options,omitempty" json:"selected_options,omitempty"`
}

// UnitPrice is the catalog price the item was added at.
func (li LineItem) UnitPrice() float64 {
	return li.Product.Price
}

// MergeKey identifies the (product, options) pair: additions with the same
// key merge by summing quantity instead of creating a duplicate row.
func (li LineItem) MergeKey() string {
	return li.ProductID + "|" + li.SelectedOptions.Key()
}

// Valid reports whether a line item is well formed: a named product with a
// positive price and a positive quantity. Restored carts failing this for
// any entry are discarded wholesale, see cart.ValidateRestored.
func (li LineItem) Valid() bool {
	return li.Product.Name != "" && li.Product.Price > 0 && li.Quantity >= 1
}

type Cart struct {
	ID        string     `bson:"_id,omitempty"`
	UserID    string     `bson:"user_id"`
	Items     []LineItem `bson:"items"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}
