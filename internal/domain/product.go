package domain

import "time"

// Product is a catalog item as received from the remote catalog.
type Product struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Rating      *Rating `json:"rating,omitempty"`
}

type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// CartEntry is one product line in the cart. Qty is always >= 1.
type CartEntry struct {
	Product Product `json:"product"`
	Qty     int     `json:"qty"`
}

// CartState is the persisted cart snapshot, keyed by product id.
type CartState struct {
	Items map[int64]CartEntry `json:"items"`
}

// EmptyCart returns a cart state with an initialized, empty mapping.
func EmptyCart() CartState {
	return CartState{Items: make(map[int64]CartEntry)}
}

// RefreshNotice asks the storefront to refetch the catalog.
type RefreshNotice struct {
	Reason      string    `json:"reason,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}
