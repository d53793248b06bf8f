// internal/domain/product/repository_port.go
package product

import (
	"context"
	"time"
)

// Filter holds the equality predicates a document store can index.
// Zero values mean "unfiltered on that axis".
type Filter struct {
	Category        string
	Brand           string
	FeaturedOnly    bool
	InStockOnly     bool
	IncludeInactive bool
	Limit           int // 0 = no limit
}

// Matches re-evaluates the filter in memory.
func (f Filter) Matches(p Product) bool {
	if !f.IncludeInactive && !p.IsActive() {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Brand != "" && p.Brand != f.Brand {
		return false
	}
	if f.FeaturedOnly && !p.IsFeatured {
		return false
	}
	if f.InStockOnly && !p.InStock() {
		return false
	}
	return true
}

// Repository is a persistence port for Product.
type Repository interface {
	// GetByID returns ErrNotFound when the document does not exist (inactive documents are returned).
	GetByID(ctx context.Context, id string) (Product, error)
	List(ctx context.Context, f Filter) ([]Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Save(ctx context.Context, p Product) (Product, error)

	// UpdateMany applies patches atomically (all or nothing).
	UpdateMany(ctx context.Context, ids []string, pt Patch, now time.Time) ([]Product, error)

	// CountActiveByCategory counts active products referencing the category.
	CountActiveByCategory(ctx context.Context, category string) (int, error)
}
