package checkout

import (
	"regexp"
	"unicode"

	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/domain"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateAddress checks an address for a step. Keys are prefixed with the
// step name ("shipping", "billing") so errors from both steps can live in
// one map.
func ValidateAddress(prefix string, a domain.Address) map[string]string {
	errs := make(map[string]string)

	if a.FirstName == "" {
		errs[prefix+".first_name"] = "First name is required"
	}
	if a.LastName == "" {
		errs[prefix+".last_name"] = "Last name is required"
	}
	if !emailRe.MatchString(a.Email) {
		errs[prefix+".email"] = "A valid email address is required"
	}
	if digitCount(a.Phone) < 10 {
		errs[prefix+".phone"] = "Phone number must have at least 10 digits"
	}
	if a.AddressLine1 == "" {
		errs[prefix+".address_line_1"] = "Street address is required"
	}
	if a.City == "" {
		errs[prefix+".city"] = "City is required"
	}
	if a.State == "" {
		errs[prefix+".state"] = "State or province is required"
	}
	if a.PostalCode == "" {
		errs[prefix+".postal_code"] = "Postal code is required"
	}

	return errs
}

// ValidatePayment requires exactly the fields relevant to the active
// payment type; fields of the other variants are ignored.
func ValidatePayment(p domain.PaymentMethod) map[string]string {
	errs := make(map[string]string)

	switch p.Type {
	case domain.PaymentTypeCard:
		if p.CardHolder == "" {
			errs["payment.card_holder"] = "Cardholder name is required"
		}
		if p.CardNumber == "" {
			errs["payment.card_number"] = "Card number is required"
		}
		if p.CardExpiry == "" {
			errs["payment.card_expiry"] = "Expiry date is required"
		}
		if p.CardCVC == "" {
			errs["payment.card_cvc"] = "CVC is required"
		}
	case domain.PaymentTypePaypal:
		if !emailRe.MatchString(p.PaypalEmail) {
			errs["payment.paypal_email"] = "A valid PayPal email is required"
		}
	case domain.PaymentTypeEFT:
		if p.BankAccount == "" {
			errs["payment.bank_account"] = "Bank account number is required"
		}
	default:
		errs["payment.type"] = "Select a payment method"
	}

	return errs
}

func digitCount(s string) int {
	var n int
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
