package cart

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/batcstore/batc-storefront/internal/domain"
	"github.com/batcstore/batc-storefront/internal/snapshot"
)

// Snapshots is the slice of the snapshot store this service needs.
// Consumers define this interface, not the Redis implementation.
type Snapshots interface {
	Load(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	Save(ctx context.Context, sessionID string, lines []domain.CartLine) error
}

// View is the cart as handed to the HTTP layer: ordered lines plus the
// derived badge count and total.
type View struct {
	Lines     []domain.CartLine `json:"lines"`
	ItemCount int               `json:"item_count"`
	Total     float64           `json:"total"`
}

// SessionEventSink receives store events tagged with the session that
// produced them.
type SessionEventSink func(sessionID string, e Event)

// Service owns one Store per visitor session and writes every mutation
// through to the snapshot store before returning.
type Service struct {
	mu     sync.Mutex
	stores map[string]*Store
	snaps  Snapshots
	sink   SessionEventSink
}

func NewService(snaps Snapshots, sink SessionEventSink) *Service {
	return &Service{
		stores: make(map[string]*Store),
		snaps:  snaps,
		sink:   sink,
	}
}

// store returns the session's in-memory store, restoring it from a
// persisted snapshot on first touch. An expired or unreadable snapshot
// restores as an empty cart.
func (s *Service) store(ctx context.Context, sessionID string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.stores[sessionID]; ok {
		return st
	}

	var storeSink EventSink
	if s.sink != nil {
		sink := s.sink
		storeSink = func(e Event) { sink(sessionID, e) }
	}

	st := NewStore(storeSink)
	lines, err := s.snaps.Load(ctx, sessionID)
	if err != nil && !errors.Is(err, snapshot.ErrSnapshotMiss) {
		log.Printf("cart restore failed for %s: %v", sessionID, err)
	}
	if len(lines) > 0 {
		st.Replace(lines)
	}
	s.stores[sessionID] = st
	return st
}

// persist writes the store's current lines through to the snapshot store.
// Persistence trouble degrades durability, not the mutation that already
// happened in memory, so it is logged rather than returned.
func (s *Service) persist(ctx context.Context, sessionID string, st *Store) {
	if err := s.snaps.Save(ctx, sessionID, st.Lines()); err != nil {
		log.Printf("cart persist failed for %s: %v", sessionID, err)
	}
}

func (s *Service) Cart(ctx context.Context, sessionID string) View {
	return viewOf(s.store(ctx, sessionID))
}

// Lines returns the session's ordered cart lines, for checkout handoff.
func (s *Service) Lines(ctx context.Context, sessionID string) []domain.CartLine {
	return s.store(ctx, sessionID).Lines()
}

func (s *Service) AddItem(ctx context.Context, sessionID string, product domain.Product, quantity int, variant *domain.Variant) (View, error) {
	st := s.store(ctx, sessionID)
	if err := st.AddItem(product, quantity, variant); err != nil {
		return View{}, err
	}
	s.persist(ctx, sessionID, st)
	return viewOf(st), nil
}

func (s *Service) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (View, error) {
	st := s.store(ctx, sessionID)
	if err := st.UpdateQuantity(productID, quantity); err != nil {
		return View{}, err
	}
	s.persist(ctx, sessionID, st)
	return viewOf(st), nil
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, productID string) View {
	st := s.store(ctx, sessionID)
	st.RemoveItem(productID)
	s.persist(ctx, sessionID, st)
	return viewOf(st)
}

func viewOf(st *Store) View {
	lines := st.Lines()
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return View{
		Lines:     lines,
		ItemCount: st.ItemCount(),
		Total:     st.Total(),
	}
}
