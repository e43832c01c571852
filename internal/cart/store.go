package cart

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/batcstore/batc-storefront/internal/domain"
)

// ToastDismissAfter is how long the "added to cart" notification stays on
// screen before auto-dismissing.
const ToastDismissAfter = 3 * time.Second

var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

// Event is emitted by the store on mutations instead of calling into any
// UI, so notification behavior stays testable.
type Event struct {
	Kind         string
	Message      string
	Product      domain.Product
	Quantity     int
	DismissAfter time.Duration
}

const EventItemAdded = "item_added"

// EventSink receives store events. A nil sink drops them.
type EventSink func(Event)

// Store holds the authoritative ordered list of cart lines for one
// session. New lines append at the end; merged lines keep their position.
type Store struct {
	mu    sync.Mutex
	lines []domain.CartLine
	sink  EventSink
}

func NewStore(sink EventSink) *Store {
	return &Store{sink: sink}
}

// AddItem merges into an existing line with the same
// (product id, variant id or absence) pair, or appends a new one.
func (s *Store) AddItem(product domain.Product, quantity int, variant *domain.Variant) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	variantID := ""
	if variant != nil {
		variantID = variant.ID
	}

	merged := false
	for i := range s.lines {
		if s.lines[i].Product.ID == product.ID && s.lines[i].VariantID() == variantID {
			s.lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.lines = append(s.lines, domain.CartLine{
			Product:  product,
			Variant:  variant,
			Quantity: quantity,
		})
	}
	s.mu.Unlock()

	s.emit(Event{
		Kind:         EventItemAdded,
		Message:      "Added to cart",
		Product:      product,
		Quantity:     quantity,
		DismissAfter: ToastDismissAfter,
	})
	return nil
}

// UpdateQuantity sets the quantity for every line of the given product.
// Matching is by product id only: when several variants of one product are
// in the cart, all of them get the new quantity. That mirrors the site's
// current behavior and is pinned by a test.
func (s *Store) UpdateQuantity(productID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].Product.ID == productID {
			s.lines[i].Quantity = quantity
		}
	}
	return nil
}

// RemoveItem deletes every line of the given product, variant lines
// included (same product-id-only matching as UpdateQuantity).
func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.Product.ID != productID {
			kept = append(kept, line)
		}
	}
	s.lines = kept
}

// Replace swaps in a restored line list, e.g. from a persisted snapshot.
func (s *Store) Replace(lines []domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append([]domain.CartLine(nil), lines...)
}

// Lines returns a copy of the ordered cart lines.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartLine(nil), s.lines...)
}

// ItemCount is the sum of quantities across all lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// Total sums unit price times quantity over all lines.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, line := range s.lines {
		total += parsePrice(line.UnitPrice()) * float64(line.Quantity)
	}
	return total
}

func (s *Store) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) == 0
}

func (s *Store) emit(e Event) {
	if s.sink != nil {
		s.sink(e)
	}
}

// parsePrice turns a formatted currency string ("$39.99", "280") into a
// number. A leading currency symbol is stripped; unparseable input counts
// as zero rather than poisoning the total.
func parsePrice(price string) float64 {
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(price), "$"))
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0
	}
	return value
}
