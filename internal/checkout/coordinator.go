package checkout

import (
	"context"
	"errors"
	"math"

	"github.com/MusclesGloves/storefront/internal/api"
	"github.com/MusclesGloves/storefront/internal/cart"
)

type Outcome string

const (
	OutcomeSuccess       Outcome = "SUCCESS"
	OutcomeInvalid       Outcome = "INVALID_CHECKOUT"
	OutcomeUnknownStatus Outcome = "UNKNOWN_STATUS"
	OutcomeFailed        Outcome = "CHECKOUT_FAILED"
)

// statusPaid is the only terminal status the backend signals success with.
const statusPaid = "PAID"

// PaymentClient submits the checkout request and reports the backend's
// terminal status.
type PaymentClient interface {
	Checkout(ctx context.Context, amount int64, items []api.CheckoutItem) (string, error)
}

type Result struct {
	Outcome Outcome `json:"outcome"`
	Status  string  `json:"status,omitempty"`
	Message string  `json:"message,omitempty"`
}

// Coordinator turns the current cart into a payment request and interprets
// the result. Only a PAID status clears the cart; anything else leaves it
// intact so the user can retry or verify manually.
type Coordinator struct {
	cart     *cart.Store
	payments PaymentClient
}

func NewCoordinator(cartStore *cart.Store, payments PaymentClient) *Coordinator {
	return &Coordinator{
		cart:     cartStore,
		payments: payments,
	}
}

func (c *Coordinator) Checkout(ctx context.Context) Result {
	lines := c.cart.Lines()

	items := make([]api.CheckoutItem, 0, len(lines))
	var total float64
	for _, line := range lines {
		items = append(items, api.CheckoutItem{ProductID: line.ID, Quantity: line.Quantity})
		total += line.Price * float64(line.Quantity)
	}

	amount := int64(math.Round(total))
	if len(items) == 0 || amount <= 0 {
		// Local pre-check, never reaches the network.
		return Result{Outcome: OutcomeInvalid, Message: "cart is empty or total is invalid"}
	}

	status, err := c.payments.Checkout(ctx, amount, items)
	if err != nil {
		msg := "checkout failed"
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		return Result{Outcome: OutcomeFailed, Message: msg}
	}

	if status == statusPaid {
		c.cart.Clear(ctx)
		return Result{Outcome: OutcomeSuccess, Status: status}
	}
	return Result{Outcome: OutcomeUnknownStatus, Status: status, Message: "payment status unknown, check your orders"}
}
