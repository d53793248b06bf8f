// internal/domain/product/search.go
package product

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/common"
)

// Sort keys accepted by Search.
const (
	SortByName      = "name"
	SortByPrice     = "price"
	SortByCreatedAt = "createdAt"
	SortByRating    = "rating"
)

// Listing defaults.
const (
	DefaultPerPage = 20
	DefaultSortBy  = SortByCreatedAt
)

// SearchQuery is the full filter/sort/page request of the listing pipeline.
type SearchQuery struct {
	Category     string
	Brand        string
	FeaturedOnly bool
	InStockOnly  bool
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Text         string
	Tags         []string
	SortBy       string
	SortOrder    common.SortOrder
	Page         common.Page
}

// StoreFilter is the equality part pushed down to the store.
func (q SearchQuery) StoreFilter() Filter {
	return Filter{
		Category:     q.Category,
		Brand:        q.Brand,
		FeaturedOnly: q.FeaturedOnly,
		InStockOnly:  q.InStockOnly,
	}
}

// Search runs the in-memory half of the listing pipeline over the store result:
// equality re-check, price range, text, tags, stable sort, page slice.
func Search(items []Product, q SearchQuery) common.PageResult[Product] {
	eq := q.StoreFilter()
	text := strings.ToLower(strings.TrimSpace(q.Text))
	tags := tagSet(q.Tags)

	matched := make([]Product, 0, len(items))
	for _, p := range items {
		if !eq.Matches(p) {
			continue
		}
		if q.MinPrice != nil && p.Price.LessThan(*q.MinPrice) {
			continue
		}
		if q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice) {
			continue
		}
		if text != "" && !matchesText(p, text) {
			continue
		}
		if len(tags) > 0 && !matchesAnyTag(p, tags) {
			continue
		}
		matched = append(matched, p)
	}

	SortProducts(matched, q.SortBy, q.SortOrder)
	return common.Paginate(matched, q.Page)
}

// SortProducts sorts in place, keeping the relative order of equal keys.
// An unknown key sorts by creation time, newest first.
func SortProducts(items []Product, sortBy string, order common.SortOrder) {
	less, ok := comparators[sortBy]
	if !ok {
		less = comparators[SortByCreatedAt]
		order = common.SortDesc
	}

	sort.SliceStable(items, func(i, j int) bool {
		if order == common.SortAsc {
			return less(items[i], items[j])
		}
		return less(items[j], items[i])
	})
}

var comparators = map[string]func(a, b Product) bool{
	SortByName: func(a, b Product) bool {
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	},
	SortByPrice: func(a, b Product) bool {
		return a.Price.LessThan(b.Price)
	},
	SortByCreatedAt: func(a, b Product) bool {
		return a.CreatedAt.Before(b.CreatedAt)
	},
	SortByRating: func(a, b Product) bool {
		return ratingOf(a) < ratingOf(b)
	},
}

// IsSortKey reports whether s is an accepted sort key.
func IsSortKey(s string) bool {
	_, ok := comparators[s]
	return ok
}

func ratingOf(p Product) float64 {
	if p.Rating == nil {
		return 0
	}
	return p.Rating.Average
}

func matchesText(p Product, needle string) bool {
	if strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) ||
		strings.Contains(strings.ToLower(p.Brand), needle) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

// tags match exactly; "Wireless" and "wireless" are different tags
func matchesAnyTag(p Product, want map[string]struct{}) bool {
	for _, t := range p.Tags {
		if _, ok := want[t]; ok {
			return true
		}
	}
	return false
}

func tagSet(src []string) map[string]struct{} {
	m := make(map[string]struct{}, len(src))
	for _, s := range src {
		if t := strings.TrimSpace(s); t != "" {
			m[t] = struct{}{}
		}
	}
	return m
}

// Related picks up to 8 same-category products (excluding self). When fewer than 4
// are found, same-brand products top the list up and the result is capped at 6.
func Related(self Product, sameCategory, sameBrand []Product) []Product {
	out := make([]Product, 0, 8)
	seen := map[string]struct{}{self.ID: {}}

	for _, p := range sameCategory {
		if len(out) == 8 {
			break
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}

	if len(out) >= 4 {
		return out
	}

	for _, p := range sameBrand {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	if len(out) > 6 {
		out = out[:6]
	}
	return out
}
