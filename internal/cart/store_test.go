package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/adapter/persist"
	"github.com/example/storefront/internal/adapter/storage"
	"github.com/example/storefront/internal/domain"
)

type recordingSaver struct {
	mu    sync.Mutex
	saves []domain.CartState
}

func (r *recordingSaver) Load(context.Context) (domain.CartState, bool) { return domain.CartState{}, false }

func (r *recordingSaver) Save(state domain.CartState) {
	r.mu.Lock()
	r.saves = append(r.saves, state)
	r.mu.Unlock()
}

func (r *recordingSaver) last() domain.CartState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves[len(r.saves)-1]
}

var (
	shirt = domain.Product{ID: 1, Title: "Red Shirt", Price: 20, Category: "clothing"}
	hat   = domain.Product{ID: 2, Title: "Blue Hat", Price: 5, Category: "accessories"}
)

func TestAddIncrementsAndKeepsFirstProduct(t *testing.T) {
	s := New(nil, domain.CartState{})
	for i := 0; i < 5; i++ {
		p := shirt
		if i > 0 {
			p.Title = "Renamed Shirt"
			p.Price = 99
		}
		s.Add(p)
	}
	e, ok := s.Get(shirt.ID)
	require.True(t, ok)
	assert.Equal(t, 5, e.Qty)
	assert.Equal(t, shirt, e.Product)
}

func TestSetQuantityClamps(t *testing.T) {
	for _, tc := range []struct {
		in, want int
	}{
		{in: -3, want: 1},
		{in: 0, want: 1},
		{in: 1, want: 1},
		{in: 7, want: 7},
	} {
		s := New(nil, domain.CartState{})
		s.Add(shirt)
		s.SetQuantity(shirt.ID, tc.in)
		e, _ := s.Get(shirt.ID)
		assert.Equal(t, tc.want, e.Qty, "SetQuantity(%d)", tc.in)
	}
}

func TestSetQuantityAbsentIsNoop(t *testing.T) {
	s := New(nil, domain.CartState{})
	s.SetQuantity(42, 3)
	_, ok := s.Get(42)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestRemoveThenAddResets(t *testing.T) {
	s := New(nil, domain.CartState{})
	s.Add(shirt)
	s.Add(shirt)
	s.Remove(shirt.ID)
	_, ok := s.Get(shirt.ID)
	assert.False(t, ok)

	s.Add(shirt)
	e, _ := s.Get(shirt.ID)
	assert.Equal(t, 1, e.Qty)
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	s := New(nil, domain.CartState{})
	s.Add(hat)
	assert.NotPanics(t, func() { s.Remove(999) })
	assert.Equal(t, 1, s.Len())
}

func TestEveryMutationSaves(t *testing.T) {
	rec := &recordingSaver{}
	s := New(rec, domain.CartState{})
	s.Add(shirt)
	s.Add(hat)
	s.SetQuantity(shirt.ID, 3)
	s.Remove(hat.ID)
	s.Remove(hat.ID)
	s.Clear()

	require.Len(t, rec.saves, 6)
	assert.Equal(t, 1, rec.saves[0].Items[shirt.ID].Qty)
	assert.Equal(t, 3, rec.saves[2].Items[shirt.ID].Qty)
	assert.NotContains(t, rec.saves[3].Items, hat.ID)
	assert.Empty(t, rec.last().Items)
}

func TestSavedSnapshotIsACopy(t *testing.T) {
	rec := &recordingSaver{}
	s := New(rec, domain.CartState{})
	s.Add(shirt)
	first := rec.saves[0]
	s.Add(shirt)
	assert.Equal(t, 1, first.Items[shirt.ID].Qty, "later mutations must not leak into earlier snapshots")
}

func TestTotalAndCount(t *testing.T) {
	s := New(nil, domain.CartState{})
	assert.True(t, s.Total().IsZero())

	s.Add(shirt)
	s.Add(shirt)
	s.Add(domain.Product{ID: 3, Title: "Pen", Price: 0.1})
	s.Add(domain.Product{ID: 3, Title: "Pen", Price: 0.1})
	s.Add(domain.Product{ID: 3, Title: "Pen", Price: 0.1})

	assert.True(t, decimal.RequireFromString("40.3").Equal(s.Total()), "got %s", s.Total())
	assert.Equal(t, 5, s.Count())
}

func TestEntriesSortedByID(t *testing.T) {
	s := New(nil, domain.CartState{})
	s.Add(hat)
	s.Add(shirt)
	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].Product.ID)
	assert.Equal(t, int64(2), entries[1].Product.ID)
}

func TestNewNormalizesRestoredState(t *testing.T) {
	s := New(nil, domain.CartState{Items: map[int64]domain.CartEntry{
		1: {Product: shirt, Qty: 0},
		2: {Product: hat, Qty: 4},
	}})
	e1, _ := s.Get(1)
	e2, _ := s.Get(2)
	assert.Equal(t, 1, e1.Qty)
	assert.Equal(t, 4, e2.Qty)
}

func TestClearThenReloadIsEmpty(t *testing.T) {
	adapter := persist.NewCartSnapshot(storage.NewMemory(), persist.DefaultKey, 0)
	s := New(adapter, domain.CartState{})
	s.Add(shirt)
	s.Add(hat)
	s.Clear()

	state, ok := adapter.Load(context.Background())
	require.True(t, ok)
	assert.Empty(t, state.Items)
}

func TestRestoreFromPersistedSnapshot(t *testing.T) {
	adapter := persist.NewCartSnapshot(storage.NewMemory(), persist.DefaultKey, 0)
	s := New(adapter, domain.CartState{})
	s.Add(shirt)
	s.Add(shirt)
	s.Add(hat)

	state, ok := adapter.Load(context.Background())
	require.True(t, ok)
	restored := New(adapter, state)
	assert.Equal(t, s.Snapshot(), restored.Snapshot())
	assert.Equal(t, 3, restored.Count())
}

func TestConcurrentAdds(t *testing.T) {
	s := New(&recordingSaver{}, domain.CartState{})
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add(hat)
		}()
	}
	wg.Wait()
	e, _ := s.Get(hat.ID)
	assert.Equal(t, 100, e.Qty)
}
