package http

import (
	"net/http"

	"github.com/MusclesGloves/storefront/internal/checkout"
)

type CheckoutHandler struct {
	coordinator *checkout.Coordinator
}

func NewCheckoutHandler(coordinator *checkout.Coordinator) *CheckoutHandler {
	return &CheckoutHandler{coordinator: coordinator}
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	res := h.coordinator.Checkout(r.Context())

	status := http.StatusOK
	switch res.Outcome {
	case checkout.OutcomeInvalid:
		status = http.StatusBadRequest
	case checkout.OutcomeFailed:
		status = http.StatusBadGateway
	case checkout.OutcomeUnknownStatus:
		status = http.StatusAccepted
	}
	respondJSON(w, status, res)
}
