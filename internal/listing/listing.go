// Package listing filters and paginates a product list. Everything here is
// a pure function of its inputs.
package listing

import (
	"strings"

	"github.com/example/storefront/internal/domain"
)

// CategoryAll disables the category filter. An empty category does too.
const CategoryAll = "all"

// DefaultPageSize is used when a non-positive page size is requested.
const DefaultPageSize = 8

// Criteria selects products. Nil price bounds are unset.
type Criteria struct {
	SearchText string   `json:"search"`
	Category   string   `json:"category"`
	MinPrice   *float64 `json:"minPrice,omitempty"`
	MaxPrice   *float64 `json:"maxPrice,omitempty"`
}

// Page is one slice of the filtered list.
type Page struct {
	Items      []domain.Product `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	Total      int              `json:"total"`
	TotalPages int              `json:"totalPages"`
}

// Filter keeps the items matching every set criterion: title search,
// category, minimum price and maximum price, in that order.
func Filter(items []domain.Product, c Criteria) []domain.Product {
	out := make([]domain.Product, 0, len(items))
	q := ""
	if strings.TrimSpace(c.SearchText) != "" {
		q = strings.ToLower(c.SearchText)
	}
	for _, p := range items {
		if q != "" && !strings.Contains(strings.ToLower(p.Title), q) {
			continue
		}
		if c.Category != "" && c.Category != CategoryAll && p.Category != c.Category {
			continue
		}
		if c.MinPrice != nil && p.Price < *c.MinPrice {
			continue
		}
		if c.MaxPrice != nil && p.Price > *c.MaxPrice {
			continue
		}
		out = append(out, p)
	}
	return out
}

// TotalPages is max(1, ceil(total/pageSize)).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total-1)/pageSize + 1
}

// Paginate returns items[(page-1)*pageSize : page*pageSize], clipped to the
// list. A page past the end yields no items; it is not corrected.
func Paginate(items []domain.Product, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(items)
	start, end := total, total
	// page-1 is compared by division so huge page numbers cannot overflow
	if total > 0 && page-1 <= (total-1)/pageSize {
		start = (page - 1) * pageSize
		end = start + min(pageSize, total-start)
	}
	return Page{
		Items:      append([]domain.Product{}, items[start:end]...),
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: TotalPages(total, pageSize),
	}
}

// Apply filters items by c and returns the requested page.
func Apply(items []domain.Product, c Criteria, page, pageSize int) Page {
	return Paginate(Filter(items, c), page, pageSize)
}

// ResetPage keeps page within [1, totalPages], falling back to 1.
func ResetPage(page, totalPages int) int {
	if page < 1 || page > totalPages {
		return 1
	}
	return page
}
