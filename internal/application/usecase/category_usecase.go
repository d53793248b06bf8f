// internal/application/usecase/category_usecase.go
package usecase

import (
	"context"
	"strings"

	catdom "storefront/internal/domain/category"
	productdom "storefront/internal/domain/product"
)

// CategoryWithCount is a category plus the number of active products referencing it.
type CategoryWithCount struct {
	catdom.Category
	ProductCount int
}

// CategoryUsecase manages categories; products are read to count references.
type CategoryUsecase struct {
	repo     catdom.Repository
	products productdom.Repository
	clock    Clock
	newID    IDGenerator
}

func NewCategoryUsecase(repo catdom.Repository, products productdom.Repository, clock Clock, ids IDGenerator) *CategoryUsecase {
	return &CategoryUsecase{repo: repo, products: products, clock: clockOrSystem(clock), newID: idsOrUUID(ids)}
}

// List returns categories with product counts. Admins may include inactive ones.
func (uc *CategoryUsecase) List(ctx context.Context, actor Actor, includeInactive bool) ([]CategoryWithCount, error) {
	cats, err := uc.repo.List(ctx, includeInactive && actor.IsAdmin())
	if err != nil {
		return nil, err
	}

	active, err := uc.products.List(ctx, productdom.Filter{})
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(cats))
	for _, p := range active {
		counts[p.Category]++
	}

	out := make([]CategoryWithCount, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryWithCount{Category: c, ProductCount: counts[c.ID]})
	}
	return out, nil
}

// Get returns a category; inactive ones are NotFound for non-admins.
func (uc *CategoryUsecase) Get(ctx context.Context, actor Actor, id string) (CategoryWithCount, error) {
	c, err := uc.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return CategoryWithCount{}, err
	}
	if !c.Lifecycle.VisibleTo(actor.IsAdmin()) {
		return CategoryWithCount{}, catdom.ErrNotFound
	}
	n, err := uc.products.CountActiveByCategory(ctx, c.ID)
	if err != nil {
		return CategoryWithCount{}, err
	}
	return CategoryWithCount{Category: c, ProductCount: n}, nil
}

// CategoryInput carries the fields of a new category. ID is optional (slug-style ids).
type CategoryInput struct {
	ID          string
	Name        string
	Description string
	ParentID    string
	ImageURL    string
}

func (uc *CategoryUsecase) Create(ctx context.Context, in CategoryInput) (catdom.Category, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uc.newID()
	}
	c, err := catdom.New(id, in.Name, in.Description, in.ParentID, in.ImageURL, uc.clock.Now())
	if err != nil {
		return catdom.Category{}, err
	}
	return uc.repo.Create(ctx, c)
}

func (uc *CategoryUsecase) Update(ctx context.Context, id string, patch catdom.Patch) (catdom.Category, error) {
	c, err := uc.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return catdom.Category{}, err
	}
	if err := c.Apply(patch, uc.clock.Now()); err != nil {
		return catdom.Category{}, err
	}
	return uc.repo.Save(ctx, c)
}

// Delete soft-deletes a category. It returns the blocking product count with ErrHasProducts.
func (uc *CategoryUsecase) Delete(ctx context.Context, id string) (int, error) {
	c, err := uc.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return 0, err
	}
	n, err := uc.products.CountActiveByCategory(ctx, c.ID)
	if err != nil {
		return 0, err
	}
	if err := c.Deactivate(n, uc.clock.Now()); err != nil {
		return n, err
	}
	_, err = uc.repo.Save(ctx, c)
	return 0, err
}
