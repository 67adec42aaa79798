// Package checkout drives the three step checkout flow. Forward progress
// is gated on the current step's validator; back navigation never is.
package checkout

import (
	"sync"

	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/domain"
)

type Step int

const (
	StepShipping Step = iota + 1
	StepBilling
	StepPayment
)

func (s Step) String() string {
	switch s {
	case StepShipping:
		return "shipping"
	case StepBilling:
		return "billing"
	case StepPayment:
		return "payment"
	default:
		return "unknown"
	}
}

// Session is one user's checkout in progress. The flow is linear:
// shipping, billing, payment, then submitted (terminal, reached only
// through a successful order submission from the payment step).
type Session struct {
	mu          sync.Mutex
	userID      string
	step        Step
	submitted   bool
	shipping    domain.Address
	billing     domain.Address
	sameAddress bool
	payment     domain.PaymentMethod
	errors      map[string]string
}

func NewSession(userID string) *Session {
	return &Session{
		userID:      userID,
		step:        StepShipping,
		sameAddress: true,
		errors:      make(map[string]string),
	}
}

func (s *Session) CurrentStep() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func (s *Session) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

func (s *Session) SameAddress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sameAddress
}

func (s *Session) ShippingAddress() domain.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shipping
}

func (s *Session) BillingAddress() domain.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.billing
}

func (s *Session) Payment() domain.PaymentMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payment
}

// Errors returns a copy of the current field error map.
func (s *Session) Errors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

// SetShipping replaces the shipping address. While the same-address flag
// is on, billing mirrors every shipping edit. Errors recorded against
// fields that changed are cleared immediately.
func (s *Session) SetShipping(a domain.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clearEditedFields(s.errors, "shipping", s.shipping, a)
	s.shipping = a
	if s.sameAddress {
		s.billing = a
	}
}

// SetBilling replaces the billing address. Ignored while the same-address
// flag is on; billing is a mirror of shipping until the flag is cleared.
func (s *Session) SetBilling(a domain.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sameAddress {
		return
	}
	clearEditedFields(s.errors, "billing", s.billing, a)
	s.billing = a
}

// SetSameAddress toggles billing mirroring. Enabling takes a value copy of
// shipping at that moment and keeps it in sync; disabling freezes the last
// mirrored values as independently editable.
func (s *Session) SetSameAddress(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if on && !s.sameAddress {
		s.billing = s.shipping
		clearPrefix(s.errors, "billing")
	}
	s.sameAddress = on
}

// SetPayment replaces the payment method. Changing the type discards all
// payment errors; otherwise only errors on edited fields are cleared.
func (s *Session) SetPayment(p domain.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Type != s.payment.Type {
		clearPrefix(s.errors, "payment")
	} else {
		clearEditedPayment(s.errors, s.payment, p)
	}
	s.payment = p
}

// Advance validates the current step only. On success the session moves
// one step forward (capped at payment) and the step's errors are cleared;
// on failure it stays in place and the field errors are surfaced. The
// returned map is nil when the step passed.
func (s *Session) Advance() (map[string]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stepErrs := s.validateStep(s.step)
	if len(stepErrs) > 0 {
		for k, v := range stepErrs {
			s.errors[k] = v
		}
		return stepErrs, false
	}

	clearPrefix(s.errors, s.step.String())
	if s.step < StepPayment {
		s.step++
	}
	return nil, true
}

// Retreat moves one step back. Back navigation is always permitted and
// never re-validates.
func (s *Session) Retreat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step > StepShipping {
		s.step--
	}
}

// CanSubmit reports whether the session is ready for order submission:
// sitting on the payment step, not already submitted, and passing the
// payment validator. Prior steps were already gated on their validators
// by Advance.
func (s *Session) CanSubmit() (map[string]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitted || s.step != StepPayment {
		return nil, false
	}
	if errs := s.validateStep(StepPayment); len(errs) > 0 {
		return errs, false
	}
	return nil, true
}

// MarkSubmitted moves the session to its terminal state. Called by the
// owner of the flow after the order write succeeded.
func (s *Session) MarkSubmitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = true
}

func (s *Session) validateStep(step Step) map[string]string {
	switch step {
	case StepShipping:
		return ValidateAddress("shipping", s.shipping)
	case StepBilling:
		// Shipping's validation already covered the mirrored values.
		if s.sameAddress {
			return nil
		}
		return ValidateAddress("billing", s.billing)
	case StepPayment:
		return ValidatePayment(s.payment)
	default:
		return nil
	}
}

func clearPrefix(errs map[string]string, prefix string) {
	for k := range errs {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix && k[len(prefix)] == '.' {
			delete(errs, k)
		}
	}
}

// clearEditedFields drops errors for address fields whose value changed.
func clearEditedFields(errs map[string]string, prefix string, old, next domain.Address) {
	for field, vals := range map[string][2]string{
		"first_name":     {old.FirstName, next.FirstName},
		"last_name":      {old.LastName, next.LastName},
		"email":          {old.Email, next.Email},
		"phone":          {old.Phone, next.Phone},
		"address_line_1": {old.AddressLine1, next.AddressLine1},
		"address_line_2": {old.AddressLine2, next.AddressLine2},
		"city":           {old.City, next.City},
		"state":          {old.State, next.State},
		"postal_code":    {old.PostalCode, next.PostalCode},
		"country":        {old.Country, next.Country},
	} {
		if vals[0] != vals[1] {
			delete(errs, prefix+"."+field)
		}
	}
}

func clearEditedPayment(errs map[string]string, old, next domain.PaymentMethod) {
	for field, vals := range map[string][2]string{
		"card_holder":  {old.CardHolder, next.CardHolder},
		"card_number":  {old.CardNumber, next.CardNumber},
		"card_expiry":  {old.CardExpiry, next.CardExpiry},
		"card_cvc":     {old.CardCVC, next.CardCVC},
		"paypal_email": {old.PaypalEmail, next.PaypalEmail},
		"bank_account": {old.BankAccount, next.BankAccount},
	} {
		if vals[0] != vals[1] {
			delete(errs, "payment."+field)
		}
	}
}
