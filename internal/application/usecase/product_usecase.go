// internal/application/usecase/product_usecase.go
package usecase

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/common"
	productdom "storefront/internal/domain/product"
)

// Listing limits used by the catalog endpoints.
const (
	FeaturedLimit = 12
	ListLimit     = 50
	relatedLimit  = 8
	MaxBulkWrites = 500
)

var (
	ErrProductInvalidArgument = common.NewError(common.ErrInvalidArgument, "Invalid product request")
	ErrNoImageStorage         = common.NewError(common.ErrUnavailable, "Image storage is not configured")
	ErrTooManyIDs             = common.NewError(common.ErrInvalidArgument, fmt.Sprintf("At most %d ids per request", MaxBulkWrites))
)

// ProductImageStoragePort は商品画像のアップロード先（GCS）を抽象化します。
type ProductImageStoragePort interface {
	// Upload stores the object and returns its public URL.
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// LifecycleFilter selects products by lifecycle in admin listings.
type LifecycleFilter string

const (
	LifecycleAll      LifecycleFilter = "all"
	LifecycleActive   LifecycleFilter = "active"
	LifecycleInactive LifecycleFilter = "inactive"
)

// StockChange is the result of AdjustStock.
type StockChange struct {
	ProductID     string
	PreviousStock int
	NewStock      int
	Action        productdom.StockAction
}

// ProductUsecase coordinates catalog reads and admin writes.
type ProductUsecase struct {
	repo   productdom.Repository
	images ProductImageStoragePort
	clock  Clock
	newID  IDGenerator
}

// NewProductUsecase wires the usecase. images may be nil (upload disabled).
func NewProductUsecase(repo productdom.Repository, images ProductImageStoragePort, clock Clock, ids IDGenerator) *ProductUsecase {
	return &ProductUsecase{
		repo:   repo,
		images: images,
		clock:  clockOrSystem(clock),
		newID:  idsOrUUID(ids),
	}
}

// ==============================
// Reads
// ==============================

// Search runs the listing pipeline: equality query in the store, the rest in memory.
func (uc *ProductUsecase) Search(ctx context.Context, q productdom.SearchQuery) (common.PageResult[productdom.Product], error) {
	items, err := uc.repo.List(ctx, q.StoreFilter())
	if err != nil {
		return common.PageResult[productdom.Product]{}, err
	}
	return productdom.Search(items, q), nil
}

// Featured returns active featured products, newest first.
func (uc *ProductUsecase) Featured(ctx context.Context, limit int) ([]productdom.Product, error) {
	return uc.listNewest(ctx, productdom.Filter{FeaturedOnly: true, Limit: clampLimit(limit, FeaturedLimit)})
}

// ByCategory returns active products of a category, newest first.
func (uc *ProductUsecase) ByCategory(ctx context.Context, category string, limit int) ([]productdom.Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, ErrProductInvalidArgument
	}
	return uc.listNewest(ctx, productdom.Filter{Category: category, Limit: clampLimit(limit, ListLimit)})
}

// ByBrand returns active products of a brand, newest first.
func (uc *ProductUsecase) ByBrand(ctx context.Context, brand string, limit int) ([]productdom.Product, error) {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return nil, ErrProductInvalidArgument
	}
	return uc.listNewest(ctx, productdom.Filter{Brand: brand, Limit: clampLimit(limit, ListLimit)})
}

// Related returns products sharing category (then brand) with id.
func (uc *ProductUsecase) Related(ctx context.Context, id string) ([]productdom.Product, error) {
	self, err := uc.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}

	sameCategory, err := uc.repo.List(ctx, productdom.Filter{Category: self.Category, Limit: relatedLimit})
	if err != nil {
		return nil, err
	}

	var sameBrand []productdom.Product
	if len(sameCategory) <= 4 {
		sameBrand, err = uc.repo.List(ctx, productdom.Filter{Brand: self.Brand, Limit: relatedLimit})
		if err != nil {
			return nil, err
		}
	}
	return productdom.Related(self, sameCategory, sameBrand), nil
}

// Get returns a product; inactive products are NotFound for non-admins.
func (uc *ProductUsecase) Get(ctx context.Context, actor Actor, id string) (productdom.Product, error) {
	p, err := uc.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return productdom.Product{}, err
	}
	if !p.Lifecycle.VisibleTo(actor.IsAdmin()) {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}

// AdminList lists every product by lifecycle, newest first.
func (uc *ProductUsecase) AdminList(ctx context.Context, status LifecycleFilter, page common.Page) (common.PageResult[productdom.Product], error) {
	items, err := uc.repo.List(ctx, productdom.Filter{IncludeInactive: true})
	if err != nil {
		return common.PageResult[productdom.Product]{}, err
	}

	filtered := make([]productdom.Product, 0, len(items))
	for _, p := range items {
		switch status {
		case LifecycleActive:
			if !p.IsActive() {
				continue
			}
		case LifecycleInactive:
			if p.IsActive() {
				continue
			}
		}
		filtered = append(filtered, p)
	}

	productdom.SortProducts(filtered, productdom.SortByCreatedAt, common.SortDesc)
	return common.Paginate(filtered, page), nil
}

// Analytics summarizes the whole catalog.
func (uc *ProductUsecase) Analytics(ctx context.Context) (productdom.Analytics, error) {
	items, err := uc.repo.List(ctx, productdom.Filter{IncludeInactive: true})
	if err != nil {
		return productdom.Analytics{}, err
	}
	return productdom.Analyze(items), nil
}

// ==============================
// Admin writes
// ==============================

func (uc *ProductUsecase) Create(ctx context.Context, in productdom.NewInput) (productdom.Product, error) {
	p, err := productdom.New(uc.newID(), in, uc.clock.Now())
	if err != nil {
		return productdom.Product{}, err
	}
	return uc.repo.Create(ctx, p)
}

func (uc *ProductUsecase) Update(ctx context.Context, id string, patch productdom.Patch) (productdom.Product, error) {
	if patch.IsEmpty() {
		return productdom.Product{}, ErrProductInvalidArgument
	}
	p, err := uc.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return productdom.Product{}, err
	}
	if err := p.Apply(patch, uc.clock.Now()); err != nil {
		return productdom.Product{}, err
	}
	return uc.repo.Save(ctx, p)
}

// Delete soft-deletes a product.
func (uc *ProductUsecase) Delete(ctx context.Context, id string) error {
	p, err := uc.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	p.Deactivate(uc.clock.Now())
	_, err = uc.repo.Save(ctx, p)
	return err
}

func (uc *ProductUsecase) AdjustStock(ctx context.Context, id string, action productdom.StockAction, amount int) (StockChange, error) {
	p, err := uc.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return StockChange{}, err
	}
	prev, next, err := p.AdjustStock(action, amount, uc.clock.Now())
	if err != nil {
		return StockChange{}, err
	}
	if _, err := uc.repo.Save(ctx, p); err != nil {
		return StockChange{}, err
	}
	return StockChange{ProductID: p.ID, PreviousStock: prev, NewStock: next, Action: action}, nil
}

func (uc *ProductUsecase) SetPricing(ctx context.Context, id string, price, comparePrice *decimal.Decimal) (productdom.Product, error) {
	if price == nil && comparePrice == nil {
		return productdom.Product{}, ErrProductInvalidArgument
	}
	p, err := uc.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return productdom.Product{}, err
	}
	if err := p.SetPricing(price, comparePrice, uc.clock.Now()); err != nil {
		return productdom.Product{}, err
	}
	return uc.repo.Save(ctx, p)
}

// BulkUpdate applies one patch to many products atomically.
func (uc *ProductUsecase) BulkUpdate(ctx context.Context, ids []string, patch productdom.Patch) ([]productdom.Product, error) {
	ids = dedupStrings(ids)
	if len(ids) == 0 || patch.IsEmpty() {
		return nil, ErrProductInvalidArgument
	}
	if len(ids) > MaxBulkWrites {
		return nil, ErrTooManyIDs
	}
	return uc.repo.UpdateMany(ctx, ids, patch, uc.clock.Now())
}

// AttachImage uploads an image and appends its URL to the product.
func (uc *ProductUsecase) AttachImage(ctx context.Context, id, filename, contentType string, r io.Reader) (productdom.Product, error) {
	if uc.images == nil {
		return productdom.Product{}, ErrNoImageStorage
	}
	p, err := uc.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return productdom.Product{}, err
	}

	objectPath := fmt.Sprintf("products/%s/%s%s", p.ID, uc.newID(), strings.ToLower(path.Ext(filename)))
	url, err := uc.images.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		return productdom.Product{}, fmt.Errorf("upload product image: %w", err)
	}

	images := append(append([]string{}, p.Images...), url)
	if err := p.Apply(productdom.Patch{Images: &images}, uc.clock.Now()); err != nil {
		return productdom.Product{}, err
	}
	return uc.repo.Save(ctx, p)
}

func (uc *ProductUsecase) listNewest(ctx context.Context, f productdom.Filter) ([]productdom.Product, error) {
	items, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	productdom.SortProducts(items, productdom.SortByCreatedAt, common.SortDesc)
	return items, nil
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > common.MaxPerPage {
		return common.MaxPerPage
	}
	return limit
}
