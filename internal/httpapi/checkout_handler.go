package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/checkout"
	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/domain"
)

type CheckoutHandler struct {
	sessions *checkout.Manager
}

func NewCheckoutHandler(sessions *checkout.Manager) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions}
}

type SameAddressRequestDTO struct {
	SameAddress bool `json:"same_address"`
}

// CheckoutResponseDTO is the session state the checkout pages render.
type CheckoutResponseDTO struct {
	Step        int               `json:"step"`
	StepName    string            `json:"step_name"`
	Shipping    domain.Address    `json:"shipping"`
	Billing     domain.Address    `json:"billing"`
	SameAddress bool              `json:"same_address"`
	PaymentType string            `json:"payment_type,omitempty"`
	Errors      map[string]string `json:"errors"`
	Submitted   bool              `json:"submitted"`
}

func checkoutResponse(s *checkout.Session) CheckoutResponseDTO {
	step := s.CurrentStep()
	return CheckoutResponseDTO{
		Step:        int(step),
		StepName:    step.String(),
		Shipping:    s.ShippingAddress(),
		Billing:     s.BillingAddress(),
		SameAddress: s.SameAddress(),
		PaymentType: string(s.Payment().Type),
		Errors:      s.Errors(),
		Submitted:   s.Submitted(),
	}
}

func (h *CheckoutHandler) session(w http.ResponseWriter, r *http.Request) (*checkout.Session, bool) {
	identity := identityFromContext(r.Context())
	if identity.ID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return nil, false
	}
	return h.sessions.Get(identity.ID), true
}

func (h *CheckoutHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, checkoutResponse(sess))
}

func (h *CheckoutHandler) SetShipping(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var addr domain.Address
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sess.SetShipping(addr)
	respondJSON(w, http.StatusOK, checkoutResponse(sess))
}

func (h *CheckoutHandler) SetBilling(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var addr domain.Address
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sess.SetBilling(addr)
	respondJSON(w, http.StatusOK, checkoutResponse(sess))
}

func (h *CheckoutHandler) SetSameAddress(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req SameAddressRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sess.SetSameAddress(req.SameAddress)
	respondJSON(w, http.StatusOK, checkoutResponse(sess))
}

func (h *CheckoutHandler) SetPayment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var pm domain.PaymentMethod
	if err := json.NewDecoder(r.Body).Decode(&pm); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sess.SetPayment(pm)
	respondJSON(w, http.StatusOK, checkoutResponse(sess))
}

// Advance validates the current step and moves forward on success.
// Validation failures come back as field errors with a 422; the session
// stays on the failing step.
func (h *CheckoutHandler) Advance(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if fieldErrs, passed := sess.Advance(); !passed {
		respondFieldErrors(w, fieldErrs)
		return
	}
	respondJSON(w, http.StatusOK, checkoutResponse(sess))
}

func (h *CheckoutHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	sess.Retreat()
	respondJSON(w, http.StatusOK, checkoutResponse(sess))
}
