// Package catalog holds the product list and detail fetch state machine.
package catalog

import (
	"context"
	"sync"

	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/obs"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// FallbackError is shown when a failed fetch carries no message.
const FallbackError = "Failed to load"

// Detail is the outcome of a detail fetch: a product or an error message.
type Detail struct {
	Product *domain.Product `json:"product,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// State is a read-only copy of the catalog. Detail is nil while a detail
// fetch is in flight or before the first one.
type State struct {
	Items      []domain.Product `json:"items"`
	Status     Status           `json:"status"`
	Error      string           `json:"error,omitempty"`
	Detail     *Detail          `json:"detail"`
	Categories []string         `json:"categories"`
}

// Store owns catalog state. Every request is tagged with a token from a
// per-flow sequence; a response whose token is older than the latest
// request of the same flow is discarded.
type Store struct {
	client domain.CatalogClient

	listSeq   Sequencer
	detailSeq Sequencer

	mu         sync.RWMutex
	items      []domain.Product
	status     Status
	err        string
	detail     *Detail
	listLatest uint64
	detLatest  uint64
}

func New(client domain.CatalogClient) *Store {
	return &Store{client: client, status: StatusIdle}
}

// RequestList enters loading and clears the error. Items from a previous
// fetch stay visible until new data arrives.
func (s *Store) RequestList() uint64 {
	s.mu.Lock()
	token := s.listSeq.Next()
	s.listLatest = token
	s.status = StatusLoading
	s.err = ""
	s.mu.Unlock()
	return token
}

// ResolveList applies a successful list response. It reports false when
// the response was superseded by a newer request.
func (s *Store) ResolveList(token uint64, items []domain.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.listLatest {
		obs.Logger().Debug("catalog_list_stale", "token", token, "latest", s.listLatest)
		return false
	}
	s.status = StatusSucceeded
	s.items = append([]domain.Product(nil), items...)
	return true
}

// RejectList applies a failed list response.
func (s *Store) RejectList(token uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.listLatest {
		obs.Logger().Debug("catalog_list_stale", "token", token, "latest", s.listLatest)
		return false
	}
	s.status = StatusFailed
	s.err = domain.ErrorMessage(err, FallbackError)
	return true
}

// RequestDetail clears the current detail so readers can tell an in-flight
// fetch from a loaded one.
func (s *Store) RequestDetail(id int64) uint64 {
	s.mu.Lock()
	token := s.detailSeq.Next()
	s.detLatest = token
	s.detail = nil
	s.mu.Unlock()
	obs.Logger().Debug("catalog_detail_requested", "product_id", id, "token", token)
	return token
}

func (s *Store) ResolveDetail(token uint64, p domain.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.detLatest {
		obs.Logger().Debug("catalog_detail_stale", "product_id", p.ID, "token", token, "latest", s.detLatest)
		return false
	}
	s.detail = &Detail{Product: &p}
	return true
}

func (s *Store) RejectDetail(token uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.detLatest {
		obs.Logger().Debug("catalog_detail_stale", "token", token, "latest", s.detLatest)
		return false
	}
	s.detail = &Detail{Error: domain.ErrorMessage(err, FallbackError)}
	return true
}

// FetchList runs one list fetch to completion. Failures end up in the
// store state, not in a return value.
func (s *Store) FetchList(ctx context.Context) {
	token := s.RequestList()
	items, err := s.client.FetchList(ctx)
	if err != nil {
		obs.Logger().Warn("catalog_list_failed", "error", err)
		s.RejectList(token, err)
		return
	}
	if s.ResolveList(token, items) {
		obs.Logger().Info("catalog_list_loaded", "items", len(items))
	}
}

// FetchDetail runs one detail fetch to completion and returns the detail it
// applied. ok is false when a newer detail request superseded this one.
func (s *Store) FetchDetail(ctx context.Context, id int64) (Detail, bool) {
	token := s.RequestDetail(id)
	p, err := s.client.FetchByID(ctx, id)
	if err != nil {
		obs.Logger().Warn("catalog_detail_failed", "product_id", id, "error", err)
		if !s.RejectDetail(token, err) {
			return Detail{}, false
		}
		return Detail{Error: domain.ErrorMessage(err, FallbackError)}, true
	}
	if !s.ResolveDetail(token, p) {
		return Detail{}, false
	}
	return Detail{Product: &p}, true
}

// FetchListAsync starts FetchList on its own goroutine. The returned
// channel is closed once the response has been applied or discarded.
func (s *Store) FetchListAsync(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.FetchList(ctx)
	}()
	return done
}

func (s *Store) FetchDetailAsync(ctx context.Context, id int64) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.FetchDetail(ctx, id)
	}()
	return done
}

// Snapshot returns a copy of the whole catalog state, categories included.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{
		Items:      append([]domain.Product(nil), s.items...),
		Status:     s.status,
		Error:      s.err,
		Categories: DistinctCategories(s.items),
	}
	if s.detail != nil {
		d := *s.detail
		st.Detail = &d
	}
	return st
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// LastError is the list error message, empty when there is none.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Items returns a copy of the current product list.
func (s *Store) Items() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product(nil), s.items...)
}

func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return DistinctCategories(s.items)
}

// Detail returns the current detail and whether one is loaded.
func (s *Store) Detail() (Detail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.detail == nil {
		return Detail{}, false
	}
	return *s.detail, true
}

// Lookup finds a product by id in the list or the loaded detail.
func (s *Store) Lookup(id int64) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.detail != nil && s.detail.Product != nil && s.detail.Product.ID == id {
		return *s.detail.Product, true
	}
	for _, p := range s.items {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// DistinctCategories returns the categories of items without duplicates,
// in first-seen order.
func DistinctCategories(items []domain.Product) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0)
	for _, p := range items {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
