package usecase

import (
	"context"
	"fmt"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/listing"
	"github.com/example/storefront/internal/obs"
)

// LoadCart restores the persisted cart at startup. Missing or unreadable
// snapshots give an empty cart.
type LoadCart struct {
	Persister domain.CartPersister
}

func (uc LoadCart) Execute(ctx context.Context) *cart.Store {
	state, ok := uc.Persister.Load(ctx)
	if !ok {
		state = domain.EmptyCart()
	}
	return cart.New(uc.Persister, state)
}

// BrowseResult is one rendered product listing.
type BrowseResult struct {
	listing.Page
	Status     catalog.Status `json:"status"`
	Error      string         `json:"error,omitempty"`
	Categories []string       `json:"categories"`
}

// BrowseProducts filters and paginates the current catalog items. A page
// beyond the last one is reset to page 1.
type BrowseProducts struct {
	Catalog *catalog.Store
}

func (uc BrowseProducts) Execute(c listing.Criteria, page, pageSize int) BrowseResult {
	st := uc.Catalog.Snapshot()
	filtered := listing.Filter(st.Items, c)
	page = listing.ResetPage(page, listing.TotalPages(len(filtered), pageSize))
	return BrowseResult{
		Page:       listing.Paginate(filtered, page, pageSize),
		Status:     st.Status,
		Error:      st.Error,
		Categories: st.Categories,
	}
}

// AddToCart adds a product known to the catalog (list or loaded detail).
type AddToCart struct {
	Cart    *cart.Store
	Catalog *catalog.Store
}

func (uc AddToCart) Execute(id int64) (domain.CartEntry, error) {
	p, ok := uc.Catalog.Lookup(id)
	if !ok {
		return domain.CartEntry{}, domain.ErrNotFound
	}
	uc.Cart.Add(p)
	e, _ := uc.Cart.Get(id)
	return e, nil
}

// ViewProduct fetches one product into the detail slot and returns what this
// fetch applied. It reports false when a newer detail request owns the slot.
type ViewProduct struct {
	Catalog *catalog.Store
}

func (uc ViewProduct) Execute(ctx context.Context, id int64) (catalog.Detail, bool) {
	return uc.Catalog.FetchDetail(ctx, id)
}

// RefreshCatalog refetches the product list. It returns an error when the
// fetch failed so message-driven callers can ask for redelivery.
type RefreshCatalog struct {
	Catalog *catalog.Store
}

func (uc RefreshCatalog) Execute(ctx context.Context, n domain.RefreshNotice) error {
	obs.Logger().Info("catalog_refresh", "reason", n.Reason, "requested_at", n.RequestedAt)
	uc.Catalog.FetchList(ctx)
	if uc.Catalog.Status() == catalog.StatusFailed {
		return fmt.Errorf("catalog refresh: %s", uc.Catalog.LastError())
	}
	return nil
}
