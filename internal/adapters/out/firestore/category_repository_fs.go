// internal/adapters/out/firestore/category_repository_fs.go
package firestore

import (
	"context"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	catdom "storefront/internal/domain/category"
	"storefront/internal/domain/common"
)

// CategoryRepositoryFS implements category.Repository using Firestore.
// docId is the category id (slug ids such as "electronics" are allowed).
type CategoryRepositoryFS struct {
	Client *firestore.Client
}

var _ catdom.Repository = (*CategoryRepositoryFS)(nil)

func NewCategoryRepositoryFS(client *firestore.Client) *CategoryRepositoryFS {
	return &CategoryRepositoryFS{Client: client}
}

func (r *CategoryRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(colCategories)
}

func (r *CategoryRepositoryFS) GetByID(ctx context.Context, id string) (catdom.Category, error) {
	if r.Client == nil {
		return catdom.Category{}, errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return catdom.Category{}, catdom.ErrNotFound
	}
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return catdom.Category{}, mapReadErr(err, catdom.ErrNotFound)
	}
	return docToCategory(snap)
}

// List returns categories sorted by name. Sorting happens in memory so the
// isActive filter needs no composite index.
func (r *CategoryRepositoryFS) List(ctx context.Context, includeInactive bool) ([]catdom.Category, error) {
	if r.Client == nil {
		return nil, errNilClient
	}
	q := r.col().Query
	if !includeInactive {
		q = q.Where("isActive", "==", true)
	}
	items, err := collect(ctx, q, docToCategory)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
	return items, nil
}

func (r *CategoryRepositoryFS) Create(ctx context.Context, c catdom.Category) (catdom.Category, error) {
	if r.Client == nil {
		return catdom.Category{}, errNilClient
	}
	if _, err := r.col().Doc(c.ID).Create(ctx, categoryToDoc(c)); err != nil {
		return catdom.Category{}, mapCreateErr(err, alreadyExists("Category"))
	}
	return c, nil
}

func (r *CategoryRepositoryFS) Save(ctx context.Context, c catdom.Category) (catdom.Category, error) {
	if r.Client == nil {
		return catdom.Category{}, errNilClient
	}
	if _, err := r.col().Doc(c.ID).Set(ctx, categoryToDoc(c)); err != nil {
		return catdom.Category{}, err
	}
	return c, nil
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type categoryDoc struct {
	Name        string    `firestore:"name"`
	Description string    `firestore:"description"`
	ParentID    string    `firestore:"parentId,omitempty"`
	ImageURL    string    `firestore:"imageUrl,omitempty"`
	IsActive    bool      `firestore:"isActive"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

func categoryToDoc(c catdom.Category) categoryDoc {
	return categoryDoc{
		Name:        c.Name,
		Description: c.Description,
		ParentID:    c.ParentID,
		ImageURL:    c.ImageURL,
		IsActive:    c.Lifecycle.IsActive(),
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
}

func docToCategory(snap *firestore.DocumentSnapshot) (catdom.Category, error) {
	var d categoryDoc
	if err := snap.DataTo(&d); err != nil {
		return catdom.Category{}, err
	}
	return catdom.Category{
		ID:          snap.Ref.ID,
		Name:        d.Name,
		Description: d.Description,
		ParentID:    d.ParentID,
		ImageURL:    d.ImageURL,
		Lifecycle:   common.LifecycleOf(d.IsActive),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}, nil
}
