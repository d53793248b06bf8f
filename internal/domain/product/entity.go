// internal/domain/product/entity.go
package product

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/common"
)

var (
	ErrNotFound        = common.NewError(common.ErrNotFound, "Product not found")
	ErrInvalidName     = common.NewError(common.ErrInvalidArgument, "product: name is required")
	ErrInvalidPrice    = common.NewError(common.ErrInvalidArgument, "product: price must be a non-negative number")
	ErrInvalidStock    = common.NewError(common.ErrInvalidArgument, "product: stock must be a non-negative integer")
	ErrInvalidCategory = common.NewError(common.ErrInvalidArgument, "product: category is required")
	ErrInvalidBrand    = common.NewError(common.ErrInvalidArgument, "product: brand is required")
	ErrInvalidImages   = common.NewError(common.ErrInvalidArgument, "product: at least one image is required")
	ErrInvalidAction   = common.NewError(common.ErrInvalidArgument, "product: action must be set, add or subtract")
)

// Rating is the aggregated review score.
type Rating struct {
	Average float64 `json:"average" firestore:"average"`
	Count   int     `json:"count" firestore:"count"`
}

// Product is a catalog entry. Deletion only flips Lifecycle to Inactive.
type Product struct {
	ID           string
	Name         string
	Description  string
	Price        decimal.Decimal
	ComparePrice *decimal.Decimal
	Category     string
	Brand        string
	Stock        int
	Images       []string
	Lifecycle    common.Lifecycle
	IsFeatured   bool
	Tags         []string
	Rating       *Rating
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewInput carries the admin-supplied fields of a new product.
type NewInput struct {
	Name         string
	Description  string
	Price        decimal.Decimal
	ComparePrice *decimal.Decimal
	Category     string
	Brand        string
	Stock        int
	Images       []string
	Tags         []string
	IsFeatured   bool
}

// New builds an active product.
func New(id string, in NewInput, now time.Time) (Product, error) {
	p := Product{
		ID:           strings.TrimSpace(id),
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		Price:        in.Price,
		ComparePrice: in.ComparePrice,
		Category:     strings.TrimSpace(in.Category),
		Brand:        strings.TrimSpace(in.Brand),
		Stock:        in.Stock,
		Images:       normalizeList(in.Images),
		Lifecycle:    common.Active,
		IsFeatured:   in.IsFeatured,
		Tags:         normalizeList(in.Tags),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// PrimaryImage returns the first image reference or "".
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// IsActive reports whether the product is listed.
func (p Product) IsActive() bool { return p.Lifecycle.IsActive() }

// InStock reports stock > 0.
func (p Product) InStock() bool { return p.Stock > 0 }

// Patch is a partial update. nil fields are left untouched.
type Patch struct {
	Name         *string
	Description  *string
	Price        *decimal.Decimal
	ComparePrice *decimal.Decimal
	Category     *string
	Brand        *string
	Stock        *int
	Images       *[]string
	Tags         *[]string
	IsFeatured   *bool
	IsActive     *bool
}

// IsEmpty reports whether the patch changes nothing.
func (pt Patch) IsEmpty() bool {
	return pt.Name == nil && pt.Description == nil && pt.Price == nil && pt.ComparePrice == nil &&
		pt.Category == nil && pt.Brand == nil && pt.Stock == nil && pt.Images == nil &&
		pt.Tags == nil && pt.IsFeatured == nil && pt.IsActive == nil
}

// Apply mutates p with the patch and re-validates.
func (p *Product) Apply(pt Patch, now time.Time) error {
	if pt.Name != nil {
		p.Name = strings.TrimSpace(*pt.Name)
	}
	if pt.Description != nil {
		p.Description = strings.TrimSpace(*pt.Description)
	}
	if pt.Price != nil {
		p.Price = *pt.Price
	}
	if pt.ComparePrice != nil {
		cp := *pt.ComparePrice
		p.ComparePrice = &cp
	}
	if pt.Category != nil {
		p.Category = strings.TrimSpace(*pt.Category)
	}
	if pt.Brand != nil {
		p.Brand = strings.TrimSpace(*pt.Brand)
	}
	if pt.Stock != nil {
		p.Stock = *pt.Stock
	}
	if pt.Images != nil {
		p.Images = normalizeList(*pt.Images)
	}
	if pt.Tags != nil {
		p.Tags = normalizeList(*pt.Tags)
	}
	if pt.IsFeatured != nil {
		p.IsFeatured = *pt.IsFeatured
	}
	if pt.IsActive != nil {
		p.Lifecycle = common.LifecycleOf(*pt.IsActive)
	}
	p.UpdatedAt = now
	return p.validate()
}

// Deactivate soft-deletes the product.
func (p *Product) Deactivate(now time.Time) {
	p.Lifecycle = common.Inactive
	p.UpdatedAt = now
}

// StockAction selects how AdjustStock interprets its amount.
type StockAction string

const (
	StockSet      StockAction = "set"
	StockAdd      StockAction = "add"
	StockSubtract StockAction = "subtract"
)

func (a StockAction) IsValid() bool {
	switch a {
	case StockSet, StockAdd, StockSubtract:
		return true
	}
	return false
}

// AdjustStock applies a stock action. Subtract clamps at zero.
func (p *Product) AdjustStock(action StockAction, amount int, now time.Time) (prev, next int, err error) {
	if !action.IsValid() {
		return 0, 0, ErrInvalidAction
	}
	if amount < 0 {
		return 0, 0, ErrInvalidStock
	}

	prev = p.Stock
	switch action {
	case StockSet:
		next = amount
	case StockAdd:
		next = prev + amount
	case StockSubtract:
		next = prev - amount
		if next < 0 {
			next = 0
		}
	}

	p.Stock = next
	p.UpdatedAt = now
	return prev, next, nil
}

// SetPricing updates price and/or compare-at price.
func (p *Product) SetPricing(price, comparePrice *decimal.Decimal, now time.Time) error {
	return p.Apply(Patch{Price: price, ComparePrice: comparePrice}, now)
}

func (p Product) validate() error {
	if p.Name == "" {
		return ErrInvalidName
	}
	if p.Price.IsNegative() {
		return ErrInvalidPrice
	}
	if p.ComparePrice != nil && p.ComparePrice.IsNegative() {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return ErrInvalidStock
	}
	if p.Category == "" {
		return ErrInvalidCategory
	}
	if p.Brand == "" {
		return ErrInvalidBrand
	}
	if len(p.Images) == 0 {
		return ErrInvalidImages
	}
	return nil
}

// normalizeList trims entries and drops blanks. Never returns nil.
func normalizeList(src []string) []string {
	out := make([]string, 0, len(src))
	for _, s := range src {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
