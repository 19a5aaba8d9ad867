package catalog

import (
	"context"
	"sync"

	"github.com/MusclesGloves/storefront/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ProductSource fetches the product list from the backend.
type ProductSource interface {
	Products(ctx context.Context) ([]domain.ProductSnapshot, error)
}

// Catalog holds the last-seen product snapshots. Snapshots are the stock
// ceilings the cart clamps against, so add-to-cart reads go through here.
type Catalog struct {
	source ProductSource
	sfg    singleflight.Group // collapses concurrent refreshes

	mu      sync.RWMutex
	byID    map[int64]domain.ProductSnapshot
	order   []int64
	lastErr string
}

func New(source ProductSource) *Catalog {
	return &Catalog{
		source: source,
		byID:   make(map[int64]domain.ProductSnapshot),
	}
}

// Refresh fetches the product list, replacing all cached snapshots on
// success and recording the error message on failure. Concurrent callers
// share one fetch.
func (c *Catalog) Refresh(ctx context.Context) ([]domain.ProductSnapshot, error) {
	v, err, _ := c.sfg.Do("products", func() (interface{}, error) {
		products, err := c.source.Products(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.lastErr = err.Error()
			return nil, err
		}

		c.lastErr = ""
		c.byID = make(map[int64]domain.ProductSnapshot, len(products))
		c.order = c.order[:0]
		for _, p := range products {
			c.byID[p.ID] = p
			c.order = append(c.order, p.ID)
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.ProductSnapshot), nil
}

// Product returns the last-seen snapshot for an ID.
func (c *Catalog) Product(id int64) (domain.ProductSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[id]
	return p, ok
}

// Products returns the cached list in backend order.
func (c *Catalog) Products() []domain.ProductSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.ProductSnapshot, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// LastError is the message of the most recent failed refresh, or "".
func (c *Catalog) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}
