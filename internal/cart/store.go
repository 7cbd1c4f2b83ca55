// Package cart owns the shopping cart mapping and its mutation rules.
//
// The cart is a product-id keyed map of entries with qty >= 1. It is changed
// only through Add, Remove, SetQuantity and Clear; each of them saves the
// resulting snapshot through the configured domain.CartPersister before the
// next mutation can start. Totals and counts are computed on read.
package cart

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/example/storefront/internal/domain"
)

type Store struct {
	mu    sync.Mutex
	items map[int64]domain.CartEntry
	saver domain.CartPersister
}

// New builds a store from a restored snapshot (zero value for an empty
// cart). saver may be nil.
func New(saver domain.CartPersister, restored domain.CartState) *Store {
	items := make(map[int64]domain.CartEntry, len(restored.Items))
	for id, e := range restored.Items {
		if e.Qty < 1 {
			e.Qty = 1
		}
		items[id] = e
	}
	return &Store{items: items, saver: saver}
}

// Add increments the quantity of an existing entry or inserts the product
// with qty 1. The stored product of an existing entry is kept.
func (s *Store) Add(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.items[p.ID]; ok {
		e.Qty++
		s.items[p.ID] = e
	} else {
		s.items[p.ID] = domain.CartEntry{Product: p, Qty: 1}
	}
	s.persistLocked()
}

func (s *Store) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	s.persistLocked()
}

// SetQuantity sets qty for an existing entry, clamping values below 1.
func (s *Store) SetQuantity(id int64, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.items[id]; ok {
		e.Qty = max(1, qty)
		s.items[id] = e
	}
	s.persistLocked()
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[int64]domain.CartEntry)
	s.persistLocked()
}

func (s *Store) persistLocked() {
	if s.saver == nil {
		return
	}
	s.saver.Save(s.snapshotLocked())
}

func (s *Store) snapshotLocked() domain.CartState {
	out := make(map[int64]domain.CartEntry, len(s.items))
	for id, e := range s.items {
		out[id] = e
	}
	return domain.CartState{Items: out}
}

// Snapshot returns a copy of the current cart state.
func (s *Store) Snapshot() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Get(id int64) (domain.CartEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	return e, ok
}

// Entries returns the cart entries ordered by product id.
func (s *Store) Entries() []domain.CartEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartEntry, 0, len(s.items))
	for _, e := range s.items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Product.ID < out[j].Product.ID })
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Count is the sum of all quantities.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.items {
		n += e.Qty
	}
	return n
}

// Total is sum(price * qty) over all entries.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Total(s.items)
}

// Total computes the cart total for any entry mapping.
func Total(items map[int64]domain.CartEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range items {
		line := decimal.NewFromFloat(e.Product.Price).Mul(decimal.NewFromInt(int64(e.Qty)))
		total = total.Add(line)
	}
	return total
}
