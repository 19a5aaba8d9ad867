package domain

// ProductSnapshot is the client's last-seen view of a product. A later
// snapshot of the same ID supersedes price, stock and availability, but
// the ID itself never changes.
type ProductSnapshot struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	StockQuantity *int    `json:"stockQuantity"` // nil means unbounded
	Available     bool    `json:"productAvailable"`
}

// Ceiling returns the maximum allowed cart quantity for this product and
// whether that maximum is bounded at all. An absent stock quantity means
// the backend did not report one, which the cart treats as unlimited.
func (p ProductSnapshot) Ceiling() (limit int, bounded bool) {
	if p.StockQuantity == nil {
		return 0, false
	}
	return *p.StockQuantity, true
}

// CartLine is a product snapshot plus the quantity held in the cart.
// A cart holds at most one line per product ID.
type CartLine struct {
	ProductSnapshot
	Quantity int `json:"quantity"`
}
