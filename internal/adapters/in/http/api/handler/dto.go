// internal/adapters/in/http/api/handler/dto.go
package handler

import (
	"time"

	"github.com/shopspring/decimal"

	usecase "storefront/internal/application/usecase"
	cartdom "storefront/internal/domain/cart"
	catdom "storefront/internal/domain/category"
	"storefront/internal/domain/common"
	orderdom "storefront/internal/domain/order"
	productdom "storefront/internal/domain/product"
	userdom "storefront/internal/domain/user"
)

// ============================================================
// money / time
// ============================================================

func money(d decimal.Decimal) float64 { return d.Round(2).InexactFloat64() }

func moneyPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	v := money(*d)
	return &v
}

func decimalPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f).Round(2)
	return &d
}

func toRFC3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ============================================================
// pagination envelope
// ============================================================

type pageMeta struct {
	TotalCount      int  `json:"totalCount"`
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

func metaOf[T any](p common.PageResult[T]) pageMeta {
	return pageMeta{
		TotalCount:      p.TotalCount,
		CurrentPage:     p.Page,
		TotalPages:      p.TotalPages,
		HasNextPage:     p.HasNext(),
		HasPreviousPage: p.HasPrevious(),
	}
}

// ============================================================
// product
// ============================================================

type productResponse struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Price        float64            `json:"price"`
	ComparePrice *float64           `json:"comparePrice,omitempty"`
	Category     string             `json:"category"`
	Brand        string             `json:"brand"`
	Stock        int                `json:"stock"`
	Images       []string           `json:"images"`
	IsActive     bool               `json:"isActive"`
	IsFeatured   bool               `json:"isFeatured"`
	Tags         []string           `json:"tags"`
	Rating       *productdom.Rating `json:"rating,omitempty"`
	CreatedAt    string             `json:"createdAt"`
	UpdatedAt    string             `json:"updatedAt"`
}

func toProductResponse(p productdom.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        money(p.Price),
		ComparePrice: moneyPtr(p.ComparePrice),
		Category:     p.Category,
		Brand:        p.Brand,
		Stock:        p.Stock,
		Images:       nonNil(p.Images),
		IsActive:     p.IsActive(),
		IsFeatured:   p.IsFeatured,
		Tags:         nonNil(p.Tags),
		Rating:       p.Rating,
		CreatedAt:    toRFC3339(p.CreatedAt),
		UpdatedAt:    toRFC3339(p.UpdatedAt),
	}
}

func toProductResponses(items []productdom.Product) []productResponse {
	out := make([]productResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toProductResponse(p))
	}
	return out
}

type productPage struct {
	Products []productResponse `json:"products"`
	pageMeta
}

type analyticsResponse struct {
	TotalProducts       int                     `json:"totalProducts"`
	ActiveProducts      int                     `json:"activeProducts"`
	InactiveProducts    int                     `json:"inactiveProducts"`
	FeaturedProducts    int                     `json:"featuredProducts"`
	OutOfStockProducts  int                     `json:"outOfStockProducts"`
	LowStockProducts    int                     `json:"lowStockProducts"`
	TotalInventoryValue float64                 `json:"totalInventoryValue"`
	AveragePrice        float64                 `json:"averagePrice"`
	CategoriesCount     int                     `json:"categoriesCount"`
	BrandsCount         int                     `json:"brandsCount"`
	TopCategories       []productdom.NamedCount `json:"topCategories"`
	TopBrands           []productdom.NamedCount `json:"topBrands"`
}

func toAnalyticsResponse(a productdom.Analytics) analyticsResponse {
	return analyticsResponse{
		TotalProducts:       a.TotalProducts,
		ActiveProducts:      a.ActiveProducts,
		InactiveProducts:    a.InactiveProducts,
		FeaturedProducts:    a.FeaturedProducts,
		OutOfStockProducts:  a.OutOfStockProducts,
		LowStockProducts:    a.LowStockProducts,
		TotalInventoryValue: money(a.TotalInventoryValue),
		AveragePrice:        money(a.AveragePrice),
		CategoriesCount:     a.CategoriesCount,
		BrandsCount:         a.BrandsCount,
		TopCategories:       a.TopCategories,
		TopBrands:           a.TopBrands,
	}
}

// ============================================================
// category
// ============================================================

type categoryResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ParentID     string `json:"parentId,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
	IsActive     bool   `json:"isActive"`
	ProductCount *int   `json:"productCount,omitempty"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

func toCategoryResponse(c catdom.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ParentID:    c.ParentID,
		ImageURL:    c.ImageURL,
		IsActive:    c.Lifecycle.IsActive(),
		CreatedAt:   toRFC3339(c.CreatedAt),
		UpdatedAt:   toRFC3339(c.UpdatedAt),
	}
}

func toCategoryWithCount(c usecase.CategoryWithCount) categoryResponse {
	out := toCategoryResponse(c.Category)
	n := c.ProductCount
	out.ProductCount = &n
	return out
}

// ============================================================
// user / address
// ============================================================

type addressResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zipCode"`
	Country     string `json:"country"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	IsDefault   bool   `json:"isDefault"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toAddressResponse(a userdom.Address) addressResponse {
	return addressResponse{
		ID:          a.ID,
		Type:        string(a.Type),
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Street:      a.Street,
		City:        a.City,
		State:       a.State,
		ZipCode:     a.ZipCode,
		Country:     a.Country,
		PhoneNumber: a.PhoneNumber,
		IsDefault:   a.IsDefault,
		CreatedAt:   toRFC3339(a.CreatedAt),
		UpdatedAt:   toRFC3339(a.UpdatedAt),
	}
}

func toAddressResponses(items []userdom.Address) []addressResponse {
	out := make([]addressResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAddressResponse(a))
	}
	return out
}

type userResponse struct {
	ID          string              `json:"id"`
	Email       string              `json:"email"`
	FirstName   string              `json:"firstName"`
	LastName    string              `json:"lastName"`
	PhoneNumber string              `json:"phoneNumber,omitempty"`
	Role        string              `json:"role"`
	Addresses   []addressResponse   `json:"addresses"`
	IsActive    bool                `json:"isActive"`
	Preferences userdom.Preferences `json:"preferences"`
	CreatedAt   string              `json:"createdAt"`
	UpdatedAt   string              `json:"updatedAt"`
}

func toUserResponse(u userdom.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		Role:        string(u.Role),
		Addresses:   toAddressResponses(u.Addresses),
		IsActive:    u.IsActive,
		Preferences: u.Preferences,
		CreatedAt:   toRFC3339(u.CreatedAt),
		UpdatedAt:   toRFC3339(u.UpdatedAt),
	}
}

// ============================================================
// cart / order
// ============================================================

type cartItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

type cartResponse struct {
	UserID    string             `json:"userId"`
	Items     []cartItemResponse `json:"items"`
	Total     float64            `json:"total"`
	UpdatedAt string             `json:"updatedAt,omitempty"`
}

func toCartResponse(c *cartdom.Cart) cartResponse {
	if c == nil {
		return cartResponse{Items: []cartItemResponse{}}
	}
	items := make([]cartItemResponse, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, cartItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     money(it.Price),
			Image:     it.Image,
			Quantity:  it.Quantity,
		})
	}
	return cartResponse{
		UserID:    c.UserID,
		Items:     items,
		Total:     money(c.Total),
		UpdatedAt: toRFC3339(c.UpdatedAt),
	}
}

type orderItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

type shippingResponse struct {
	AddressID   string `json:"id"`
	Type        string `json:"type"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zipCode"`
	Country     string `json:"country"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	UserID          string              `json:"userId"`
	Items           []orderItemResponse `json:"items"`
	Total           float64             `json:"total"`
	ShippingAddress shippingResponse    `json:"shippingAddress"`
	PaymentMethod   string              `json:"paymentMethod"`
	Status          string              `json:"status"`
	CreatedAt       string              `json:"createdAt"`
	UpdatedAt       string              `json:"updatedAt"`
}

func toOrderResponse(o orderdom.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     money(it.Price),
			Image:     it.Image,
			Quantity:  it.Quantity,
		})
	}
	s := o.ShippingAddress
	return orderResponse{
		ID:     o.ID,
		UserID: o.UserID,
		Items:  items,
		Total:  money(o.Total),
		ShippingAddress: shippingResponse{
			AddressID:   s.AddressID,
			Type:        s.Type,
			FirstName:   s.FirstName,
			LastName:    s.LastName,
			Street:      s.Street,
			City:        s.City,
			State:       s.State,
			ZipCode:     s.ZipCode,
			Country:     s.Country,
			PhoneNumber: s.PhoneNumber,
		},
		PaymentMethod: o.PaymentMethod,
		Status:        string(o.Status),
		CreatedAt:     toRFC3339(o.CreatedAt),
		UpdatedAt:     toRFC3339(o.UpdatedAt),
	}
}

func toOrderResponses(items []orderdom.Order) []orderResponse {
	out := make([]orderResponse, 0, len(items))
	for _, o := range items {
		out = append(out, toOrderResponse(o))
	}
	return out
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
