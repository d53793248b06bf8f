// internal/adapters/out/firestore/product_repository_fs.go
package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"storefront/internal/domain/common"
	productdom "storefront/internal/domain/product"
)

// ProductRepositoryFS implements product.Repository using Firestore.
//
// Collection design:
// - collection: products
// - docId: product.ID
// - isActive / category / brand / isFeatured / stock are queried by equality (and stock > 0)
type ProductRepositoryFS struct {
	Client *firestore.Client
}

var _ productdom.Repository = (*ProductRepositoryFS)(nil)

func NewProductRepositoryFS(client *firestore.Client) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client}
}

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(colProducts)
}

func (r *ProductRepositoryFS) GetByID(ctx context.Context, id string) (productdom.Product, error) {
	if r.Client == nil {
		return productdom.Product{}, errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.Product{}, productdom.ErrNotFound
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return productdom.Product{}, mapReadErr(err, productdom.ErrNotFound)
	}
	return docToProduct(snap)
}

// List pushes only equality predicates down to Firestore so that no composite
// index is needed. Stock, ordering and the limit are applied in memory.
func (r *ProductRepositoryFS) List(ctx context.Context, f productdom.Filter) ([]productdom.Product, error) {
	if r.Client == nil {
		return nil, errNilClient
	}

	q := r.col().Query
	if !f.IncludeInactive {
		q = q.Where("isActive", "==", true)
	}
	if f.Category != "" {
		q = q.Where("category", "==", f.Category)
	}
	if f.Brand != "" {
		q = q.Where("brand", "==", f.Brand)
	}
	if f.FeaturedOnly {
		q = q.Where("isFeatured", "==", true)
	}

	items, err := collect(ctx, q, docToProduct)
	if err != nil {
		return nil, err
	}
	return newestMatching(items, f), nil
}

// newestMatching re-checks f, orders newest first and truncates to f.Limit.
func newestMatching(items []productdom.Product, f productdom.Filter) []productdom.Product {
	out := items[:0]
	for _, p := range items {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	productdom.SortProducts(out, productdom.SortByCreatedAt, common.SortDesc)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func (r *ProductRepositoryFS) Create(ctx context.Context, p productdom.Product) (productdom.Product, error) {
	if r.Client == nil {
		return productdom.Product{}, errNilClient
	}
	if _, err := r.col().Doc(p.ID).Create(ctx, productToDoc(p)); err != nil {
		return productdom.Product{}, mapCreateErr(err, alreadyExists("Product"))
	}
	return p, nil
}

// Save overwrites an existing product document.
func (r *ProductRepositoryFS) Save(ctx context.Context, p productdom.Product) (productdom.Product, error) {
	if r.Client == nil {
		return productdom.Product{}, errNilClient
	}
	ref := r.col().Doc(p.ID)
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return mapReadErr(err, productdom.ErrNotFound)
		}
		return tx.Set(ref, productToDoc(p))
	})
	if err != nil {
		return productdom.Product{}, err
	}
	return p, nil
}

// UpdateMany applies pt to every id in one transaction (Firestore caps it at 500 writes).
func (r *ProductRepositoryFS) UpdateMany(ctx context.Context, ids []string, pt productdom.Patch, now time.Time) ([]productdom.Product, error) {
	if r.Client == nil {
		return nil, errNilClient
	}
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, r.col().Doc(id))
	}

	var updated []productdom.Product
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		updated = make([]productdom.Product, 0, len(refs))

		snaps, err := tx.GetAll(refs)
		if err != nil {
			return err
		}
		for _, snap := range snaps {
			if !snap.Exists() {
				return productdom.ErrNotFound
			}
			p, err := docToProduct(snap)
			if err != nil {
				return err
			}
			if err := p.Apply(pt, now); err != nil {
				return err
			}
			updated = append(updated, p)
		}
		for i, p := range updated {
			if err := tx.Set(refs[i], productToDoc(p)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ProductRepositoryFS) CountActiveByCategory(ctx context.Context, category string) (int, error) {
	if r.Client == nil {
		return 0, errNilClient
	}
	q := r.col().
		Where("isActive", "==", true).
		Where("category", "==", category).
		Select()

	ids, err := collect(ctx, q, func(s *firestore.DocumentSnapshot) (string, error) { return s.Ref.ID, nil })
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type productDoc struct {
	Name         string             `firestore:"name"`
	Description  string             `firestore:"description"`
	Price        float64            `firestore:"price"`
	ComparePrice *float64           `firestore:"comparePrice,omitempty"`
	Category     string             `firestore:"category"`
	Brand        string             `firestore:"brand"`
	Stock        int                `firestore:"stock"`
	Images       []string           `firestore:"images"`
	IsActive     bool               `firestore:"isActive"`
	IsFeatured   bool               `firestore:"isFeatured"`
	Tags         []string           `firestore:"tags"`
	Rating       *productdom.Rating `firestore:"rating,omitempty"`
	CreatedAt    time.Time          `firestore:"createdAt"`
	UpdatedAt    time.Time          `firestore:"updatedAt"`
}

func productToDoc(p productdom.Product) productDoc {
	return productDoc{
		Name:         p.Name,
		Description:  p.Description,
		Price:        toFloat(p.Price),
		ComparePrice: toFloatPtr(p.ComparePrice),
		Category:     p.Category,
		Brand:        p.Brand,
		Stock:        p.Stock,
		Images:       nonNil(p.Images),
		IsActive:     p.IsActive(),
		IsFeatured:   p.IsFeatured,
		Tags:         nonNil(p.Tags),
		Rating:       p.Rating,
		CreatedAt:    p.CreatedAt.UTC(),
		UpdatedAt:    p.UpdatedAt.UTC(),
	}
}

func docToProduct(snap *firestore.DocumentSnapshot) (productdom.Product, error) {
	var d productDoc
	if err := snap.DataTo(&d); err != nil {
		return productdom.Product{}, err
	}
	return productdom.Product{
		ID:           snap.Ref.ID,
		Name:         d.Name,
		Description:  d.Description,
		Price:        fromFloat(d.Price),
		ComparePrice: fromFloatPtr(d.ComparePrice),
		Category:     d.Category,
		Brand:        d.Brand,
		Stock:        d.Stock,
		Images:       nonNil(d.Images),
		Lifecycle:    common.LifecycleOf(d.IsActive),
		IsFeatured:   d.IsFeatured,
		Tags:         nonNil(d.Tags),
		Rating:       d.Rating,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}, nil
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
