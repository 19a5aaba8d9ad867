package cart

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/MusclesGloves/storefront/internal/domain"
	"github.com/MusclesGloves/storefront/internal/stock"
	"github.com/MusclesGloves/storefront/internal/storage"
)

const storageKey = "cart"

var ErrLineNotFound = errors.New("product not in cart")

// Store owns the ordered set of cart lines. Every quantity change goes
// through stock.Resolve, and every mutation writes the whole cart to the
// persistence adapter before returning. A failed write is logged and the
// in-memory state stays authoritative for the session.
type Store struct {
	mu    sync.Mutex
	lines []domain.CartLine
	store storage.Store
}

// NewStore loads the persisted cart. Absence or a blob that no longer
// parses both start an empty cart; neither is an error to the caller.
func NewStore(ctx context.Context, st storage.Store) *Store {
	s := &Store{store: st}

	blob, err := st.Get(ctx, storageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return s
	}
	if err != nil {
		log.Printf("cart load error: %v", err)
		return s
	}

	var lines []domain.CartLine
	if err := storage.UnmarshalVersioned(blob, &lines); err != nil {
		log.Printf("discarding unreadable persisted cart: %v", err)
		return s
	}
	s.lines = lines
	return s
}

// AddLine adds one unit of the product, creating the line on first add.
// An existing line also takes over the snapshot's refreshed price, name
// and stock ceiling when the quantity changes.
func (s *Store) AddLine(ctx context.Context, product domain.ProductSnapshot) stock.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(product.ID)
	ceiling, bounded := product.Ceiling()

	var res stock.Result
	if idx >= 0 {
		res = stock.Resolve(s.lines[idx].Quantity, true, 1, ceiling, bounded, product.Available)
	} else {
		res = stock.Resolve(0, false, 1, ceiling, bounded, product.Available)
	}

	if res.Outcome != stock.OutcomeChanged {
		return res.Outcome
	}

	if idx >= 0 {
		s.lines[idx].ProductSnapshot = product
		s.lines[idx].Quantity = res.Quantity
	} else {
		s.lines = append(s.lines, domain.CartLine{ProductSnapshot: product, Quantity: res.Quantity})
	}
	s.persist(ctx)
	return res.Outcome
}

// SetQuantity moves an existing line to the requested quantity, clamped by
// the line's last-seen ceiling.
func (s *Store) SetQuantity(ctx context.Context, productID int64, quantity int) (stock.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(productID)
	if idx < 0 {
		return "", ErrLineNotFound
	}

	line := s.lines[idx]
	ceiling, bounded := line.Ceiling()
	res := stock.Resolve(line.Quantity, true, quantity-line.Quantity, ceiling, bounded, line.Available)

	if res.Outcome == stock.OutcomeChanged {
		s.lines[idx].Quantity = res.Quantity
		s.persist(ctx)
	}
	return res.Outcome, nil
}

// RemoveLine drops the line unconditionally; absent IDs are a no-op and
// skip the persistence write.
func (s *Store) RemoveLine(ctx context.Context, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(productID)
	if idx < 0 {
		return
	}
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	s.persist(ctx)
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.persist(ctx)
}

// Lines returns a copy of the cart in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, line := range s.lines {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

func (s *Store) indexOf(productID int64) int {
	for i := range s.lines {
		if s.lines[i].ID == productID {
			return i
		}
	}
	return -1
}

// persist writes the whole cart. Callers hold the lock.
func (s *Store) persist(ctx context.Context) {
	lines := s.lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	blob, err := storage.MarshalVersioned(lines)
	if err != nil {
		log.Printf("cart marshal error: %v", err)
		return
	}
	if err := s.store.Set(ctx, storageKey, blob); err != nil {
		log.Printf("cart persist error, keeping in-memory state: %v", err)
	}
}
