package cart

import (
	"sync"
	"time"

	"github.com/fifilen/foodapp/internal/domain"
	"github.com/shopspring/decimal"
)

// Store holds the line items of one in-progress order. All lines share the
// same restaurant id; item count and total are recomputed on every mutation.
type Store struct {
	mu        sync.RWMutex
	policy    Policy
	lines     []domain.CartLine
	itemCount int
	total     decimal.Decimal
}

// NewStore creates an empty cart that applies policy when a product from a
// second restaurant is added.
func NewStore(policy Policy) *Store {
	return &Store{
		policy: policy,
		total:  decimal.Zero,
	}
}

func (s *Store) Policy() Policy {
	return s.policy
}

// AddItem adds quantity units of product. A quantity of 0 means 1.
// Adding a product already in the cart increments its line.
func (s *Store) AddItem(product domain.Product, quantity int) error {
	if product.ID == "" {
		return ErrInvalidProduct
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) > 0 && s.lines[0].RestaurantID != product.RestaurantID {
		if s.policy != PolicyReplace {
			return &RestaurantMismatchError{
				Current:  s.lines[0].RestaurantID,
				Incoming: product.RestaurantID,
			}
		}
		s.lines = nil
	}

	if i := s.indexOf(product.ID); i >= 0 {
		s.lines[i].Quantity += quantity
	} else {
		s.lines = append(s.lines, domain.CartLine{
			ProductID:    product.ID,
			Name:         product.Name,
			UnitPrice:    product.UnitPrice,
			Quantity:     quantity,
			RestaurantID: product.RestaurantID,
			ImageURL:     product.ImageURL,
			AddedAt:      time.Now(),
		})
	}

	s.recompute()
	return nil
}

// UpdateQuantity sets the quantity of an existing line. Zero or less removes it.
func (s *Store) UpdateQuantity(productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return ErrItemNotFound
	}

	if quantity <= 0 {
		s.removeAt(i)
	} else {
		s.lines[i].Quantity = quantity
	}

	s.recompute()
	return nil
}

// RemoveItem drops the line for productID, if any.
func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID); i >= 0 {
		s.removeAt(i)
		s.recompute()
	}
}

// Clear empties the cart and releases its restaurant scope.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.recompute()
}

// RestaurantID returns the restaurant shared by all lines. ok is false when
// the cart is empty.
func (s *Store) RestaurantID() (id int64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.lines) == 0 {
		return 0, false
	}
	return s.lines[0].RestaurantID, true
}

func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.itemCount
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines) == 0
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) Snapshot() domain.CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := domain.CartSnapshot{
		Lines:      make([]domain.CartLine, len(s.lines)),
		ItemCount:  s.itemCount,
		TotalPrice: s.total,
		CapturedAt: time.Now(),
	}
	copy(snap.Lines, s.lines)
	if len(s.lines) > 0 {
		snap.RestaurantID = s.lines[0].RestaurantID
	}
	return snap
}

// Restore replaces the cart content with a previously captured snapshot.
// Lines with a non-positive quantity or from a restaurant other than the
// first line's are dropped.
func (s *Store) Restore(snap domain.CartSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = make([]domain.CartLine, 0, len(snap.Lines))
	for _, line := range snap.Lines {
		if line.Quantity < 1 || line.ProductID == "" {
			continue
		}
		if len(s.lines) > 0 && line.RestaurantID != s.lines[0].RestaurantID {
			continue
		}
		s.lines = append(s.lines, line)
	}
	s.recompute()
}

func (s *Store) indexOf(productID string) int {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(i int) {
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
}

func (s *Store) recompute() {
	count := 0
	total := decimal.Zero
	for _, line := range s.lines {
		count += line.Quantity
		total = total.Add(line.Subtotal())
	}
	s.itemCount = count
	s.total = total
}
