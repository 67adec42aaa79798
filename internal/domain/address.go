package domain

// Address is used for both shipping and billing. Billing may mirror
// shipping while the "same address" flag is set on the checkout session.
type Address struct {
	FirstName    string `bson:"first_name" json:"first_name"`
	LastName     string `bson:"last_name" json:"last_name"`
	Email        string `bson:"email" json:"email"`
	Phone        string `bson:"phone" json:"phone"`
	AddressLine1 string `bson:"address_line_1" json:"address_line_1"`
	AddressLine2 string `bson:"address_line_2,omitempty" json:"address_line_2,omitempty"`
	City         string `bson:"city" json:"city"`
	State        string `bson:"state" json:"state"`
	PostalCode   string `bson:"postal_code" json:"postal_code"`
	Country      string `bson:"country" json:"country"`
}

type PaymentType string

const (
	PaymentTypeCard   PaymentType = "card"
	PaymentTypePaypal PaymentType = "paypal"
	PaymentTypeEFT    PaymentType = "eft"
)

// PaymentMethod is a tagged union: only the fields belonging to the active
// Type are required or validated. No payment processor is invoked; the
// fields are shape-checked and a redacted descriptor is persisted.
type PaymentMethod struct {
	Type        PaymentType `json:"type"`
	CardHolder  string      `json:"card_holder,omitempty"`
	CardNumber  string      `json:"card_number,omitempty"`
	CardExpiry  string      `json:"card_expiry,omitempty"`
	CardCVC     string      `json:"card_cvc,omitempty"`
	PaypalEmail string      `json:"paypal_email,omitempty"`
	BankAccount string      `json:"bank_account,omitempty"`
}

// Descriptor returns the storable form of the payment method. Raw card
// data never reaches the order record, only the type and a reference the
// customer can recognize (last four digits, paypal email, account tail).
func (p PaymentMethod) Descriptor() PaymentDescriptor {
	d := PaymentDescriptor{Type: p.Type}
	switch p.Type {
	case PaymentTypeCard:
		d.Reference = lastN(p.CardNumber, 4)
	case PaymentTypePaypal:
		d.Reference = p.PaypalEmail
	case PaymentTypeEFT:
		d.Reference = lastN(p.BankAccount, 4)
	}
	return d
}

// PaymentDescriptor is what the order record carries about the chosen
// payment method.
type PaymentDescriptor struct {
	Type      PaymentType `json:"type"`
	Reference string      `json:"reference"`
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
