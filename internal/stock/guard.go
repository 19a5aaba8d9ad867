package stock

// Outcome tells the caller what a quantity resolution did, so the UI can
// render precise feedback without re-deriving it.
type Outcome string

const (
	OutcomeChanged           Outcome = "CHANGED"
	OutcomeAtLimit           Outcome = "AT_LIMIT"
	OutcomeAtFloor           Outcome = "AT_FLOOR"
	OutcomeBlockedOutOfStock Outcome = "OUT_OF_STOCK"
)

func (o Outcome) String() string {
	return string(o)
}

type Result struct {
	Quantity int
	Outcome  Outcome
}

// Resolve computes the next quantity for a cart line from a requested delta
// and the stock ceiling. current is the line's quantity, or 0 with
// inCart=false when the product is not in the cart yet. bounded=false means
// no ceiling is known and the quantity is only floored at 1.
//
// Pure and deterministic; all cart quantity changes go through here.
func Resolve(current int, inCart bool, delta int, ceiling int, bounded bool, available bool) Result {
	if !inCart {
		if delta <= 0 || !available || (bounded && ceiling <= 0) {
			return Result{Quantity: 0, Outcome: OutcomeBlockedOutOfStock}
		}
		current = 0
	}

	quantity := current + delta
	if quantity < 1 {
		quantity = 1
	}
	if bounded && quantity > ceiling {
		quantity = ceiling
	}

	switch {
	case quantity == current && delta > 0:
		return Result{Quantity: quantity, Outcome: OutcomeAtLimit}
	case quantity == current && delta < 0 && current == 1:
		// Cannot go below 1; removal must be explicit.
		return Result{Quantity: quantity, Outcome: OutcomeAtFloor}
	default:
		return Result{Quantity: quantity, Outcome: OutcomeChanged}
	}
}
