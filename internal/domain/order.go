package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderLine carries the unit price snapshotted at submission time. It is
// never re-derived from the live catalog afterwards.
type OrderLine struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   float64         `json:"unit_price"`
	LineTotal   float64         `json:"line_total"`
	Options     SelectedOptions `json:"options,omitempty"`
}

type Order struct {
	ID              uuid.UUID         `json:"id"`
	UserID          string            `json:"user_id"`
	UserEmail       string            `json:"user_email"`
	Status          OrderStatus       `json:"status"`
	Subtotal        float64           `json:"subtotal"`
	Shipping        float64           `json:"shipping"`
	Tax             float64           `json:"tax"`
	Total           float64           `json:"total"`
	ShippingAddress Address           `json:"shipping_address"`
	BillingAddress  Address           `json:"billing_address"`
	Payment         PaymentDescriptor `json:"payment"`
	Lines           []OrderLine       `json:"lines"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Identity is what the auth subsystem hands us: the authenticated owner of
// the session. Read-only from this core's perspective.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
