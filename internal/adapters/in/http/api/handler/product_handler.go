// internal/adapters/in/http/api/handler/product_handler.go
package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	usecase "storefront/internal/application/usecase"
	"storefront/internal/domain/common"
	productdom "storefront/internal/domain/product"
	"storefront/internal/infra/logging"
)

const maxImageBytes = 10 << 20 // 10MB

// ProductService is the part of usecase.ProductUsecase the handler calls.
type ProductService interface {
	Search(ctx context.Context, q productdom.SearchQuery) (common.PageResult[productdom.Product], error)
	Featured(ctx context.Context, limit int) ([]productdom.Product, error)
	ByCategory(ctx context.Context, category string, limit int) ([]productdom.Product, error)
	ByBrand(ctx context.Context, brand string, limit int) ([]productdom.Product, error)
	Related(ctx context.Context, id string) ([]productdom.Product, error)
	Get(ctx context.Context, actor usecase.Actor, id string) (productdom.Product, error)
	AdminList(ctx context.Context, status usecase.LifecycleFilter, page common.Page) (common.PageResult[productdom.Product], error)
	Analytics(ctx context.Context) (productdom.Analytics, error)
	Create(ctx context.Context, in productdom.NewInput) (productdom.Product, error)
	Update(ctx context.Context, id string, patch productdom.Patch) (productdom.Product, error)
	Delete(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, id string, action productdom.StockAction, amount int) (usecase.StockChange, error)
	SetPricing(ctx context.Context, id string, price, comparePrice *decimal.Decimal) (productdom.Product, error)
	BulkUpdate(ctx context.Context, ids []string, patch productdom.Patch) ([]productdom.Product, error)
	AttachImage(ctx context.Context, id, filename, contentType string, r io.Reader) (productdom.Product, error)
}

// ProductHandler serves /api/products.
type ProductHandler struct {
	uc  ProductService
	log *logrus.Entry
}

func NewProductHandler(uc ProductService) http.Handler {
	return &ProductHandler{uc: uc, log: logging.For("product_handler")}
}

const productsPrefix = "/api/products"

func (h *ProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r, productsPrefix)

	switch {
	// ---- collection ----
	case len(parts) == 0:
		switch r.Method {
		case http.MethodGet:
			h.search(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			methodNotAllowed(w)
		}

	case len(parts) == 1 && parts[0] == "search":
		h.onlyGet(w, r, h.search)
	case len(parts) == 1 && parts[0] == "featured":
		h.onlyGet(w, r, h.featured)
	case len(parts) == 2 && parts[0] == "category":
		h.onlyGet(w, r, func(w http.ResponseWriter, r *http.Request) { h.byCategory(w, r, parts[1]) })
	case len(parts) == 2 && parts[0] == "brand":
		h.onlyGet(w, r, func(w http.ResponseWriter, r *http.Request) { h.byBrand(w, r, parts[1]) })

	// ---- admin ----
	case len(parts) == 2 && parts[0] == "admin":
		switch {
		case parts[1] == "all" && r.Method == http.MethodGet:
			h.adminList(w, r)
		case parts[1] == "analytics" && r.Method == http.MethodGet:
			h.analytics(w, r)
		case parts[1] == "bulk-update" && r.Method == http.MethodPatch:
			h.bulkUpdate(w, r)
		case parts[1] == "all", parts[1] == "analytics", parts[1] == "bulk-update":
			methodNotAllowed(w)
		default:
			notFound(w)
		}

	// ---- item ----
	case len(parts) == 1:
		id := parts[0]
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodPut:
			h.update(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			methodNotAllowed(w)
		}

	case len(parts) == 2:
		id, sub := parts[0], parts[1]
		switch {
		case sub == "related" && r.Method == http.MethodGet:
			h.related(w, r, id)
		case sub == "stock" && r.Method == http.MethodPatch:
			h.adjustStock(w, r, id)
		case sub == "pricing" && r.Method == http.MethodPatch:
			h.setPricing(w, r, id)
		case sub == "images" && r.Method == http.MethodPost:
			h.uploadImage(w, r, id)
		case sub == "related", sub == "stock", sub == "pricing", sub == "images":
			methodNotAllowed(w)
		default:
			notFound(w)
		}

	default:
		notFound(w)
	}
}

func (h *ProductHandler) onlyGet(w http.ResponseWriter, r *http.Request, fn http.HandlerFunc) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	fn(w, r)
}

// ============================================================
// reads
// ============================================================

func (h *ProductHandler) search(w http.ResponseWriter, r *http.Request) {
	q, details := parseSearchQuery(r)
	if len(details) > 0 {
		writeValidation(w, details)
		return
	}
	res, err := h.uc.Search(r.Context(), q)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productPage{Products: toProductResponses(res.Items), pageMeta: metaOf(res)})
}

// parseSearchQuery reads the listing query string. Bad numbers become validation details;
// page/limit are clamped later rather than rejected.
func parseSearchQuery(r *http.Request) (productdom.SearchQuery, []FieldError) {
	v := r.URL.Query()
	var details []FieldError

	price := func(key string) *decimal.Decimal {
		s := strings.TrimSpace(v.Get(key))
		if s == "" {
			return nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil || d.IsNegative() {
			details = append(details, FieldError{Field: key, Message: key + " must be a non-negative number"})
			return nil
		}
		return &d
	}

	q := productdom.SearchQuery{
		Category:     strings.TrimSpace(v.Get("category")),
		Brand:        strings.TrimSpace(v.Get("brand")),
		FeaturedOnly: v.Get("isFeatured") == "true" || v.Get("featured") == "true",
		InStockOnly:  v.Get("inStock") == "true",
		MinPrice:     price("minPrice"),
		MaxPrice:     price("maxPrice"),
		Text:         strings.TrimSpace(v.Get("q")),
		SortBy:       strings.TrimSpace(v.Get("sortBy")),
		SortOrder:    common.ParseSortOrder(strings.ToLower(strings.TrimSpace(v.Get("sortOrder")))),
		Page: common.Page{
			Number:  parseIntDefault(v.Get("page"), 1),
			PerPage: parseIntDefault(v.Get("limit"), productdom.DefaultPerPage),
		},
	}
	if q.SortBy == "" {
		q.SortBy = productdom.DefaultSortBy
	}
	if tags := strings.TrimSpace(v.Get("tags")); tags != "" {
		q.Tags = strings.Split(tags, ",")
	}
	return q, details
}

func (h *ProductHandler) featured(w http.ResponseWriter, r *http.Request) {
	items, err := h.uc.Featured(r.Context(), parseIntDefault(r.URL.Query().Get("limit"), usecase.FeaturedLimit))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(items))
}

func (h *ProductHandler) byCategory(w http.ResponseWriter, r *http.Request, category string) {
	items, err := h.uc.ByCategory(r.Context(), category, parseIntDefault(r.URL.Query().Get("limit"), usecase.ListLimit))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(items))
}

func (h *ProductHandler) byBrand(w http.ResponseWriter, r *http.Request, brand string) {
	items, err := h.uc.ByBrand(r.Context(), brand, parseIntDefault(r.URL.Query().Get("limit"), usecase.ListLimit))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(items))
}

func (h *ProductHandler) related(w http.ResponseWriter, r *http.Request, id string) {
	items, err := h.uc.Related(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(items))
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.uc.Get(r.Context(), actorOrAnon(r), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) adminList(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	status := usecase.LifecycleFilter(strings.TrimSpace(r.URL.Query().Get("status")))
	switch status {
	case "":
		status = usecase.LifecycleAll
	case usecase.LifecycleAll, usecase.LifecycleActive, usecase.LifecycleInactive:
	default:
		writeValidation(w, []FieldError{{Field: "status", Message: "status must be one of: active, inactive, all"}})
		return
	}

	res, err := h.uc.AdminList(r.Context(), status, pageFrom(r, productdom.DefaultPerPage))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productPage{Products: toProductResponses(res.Items), pageMeta: metaOf(res)})
}

func (h *ProductHandler) analytics(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	a, err := h.uc.Analytics(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnalyticsResponse(a))
}

// ============================================================
// admin writes
// ============================================================

type createProductRequest struct {
	Name         string   `json:"name" validate:"nonblank,max=200"`
	Description  string   `json:"description" validate:"nonblank,max=2000"`
	Price        *float64 `json:"price" validate:"required,gte=0"`
	ComparePrice *float64 `json:"comparePrice" validate:"omitempty,gte=0"`
	Category     string   `json:"category" validate:"nonblank"`
	Brand        string   `json:"brand" validate:"nonblank"`
	Stock        *int     `json:"stock" validate:"required,gte=0"`
	Images       []string `json:"images" validate:"required,min=1,dive,nonblank"`
	Tags         []string `json:"tags" validate:"omitempty,dive,nonblank"`
	IsFeatured   bool     `json:"isFeatured"`
}

type productPatchRequest struct {
	Name         *string   `json:"name" validate:"omitempty,nonblank,max=200"`
	Description  *string   `json:"description" validate:"omitempty,max=2000"`
	Price        *float64  `json:"price" validate:"omitempty,gte=0"`
	ComparePrice *float64  `json:"comparePrice" validate:"omitempty,gte=0"`
	Category     *string   `json:"category" validate:"omitempty,nonblank"`
	Brand        *string   `json:"brand" validate:"omitempty,nonblank"`
	Stock        *int      `json:"stock" validate:"omitempty,gte=0"`
	Images       *[]string `json:"images" validate:"omitempty,min=1,dive,nonblank"`
	Tags         *[]string `json:"tags" validate:"omitempty,dive,nonblank"`
	IsFeatured   *bool     `json:"isFeatured"`
	IsActive     *bool     `json:"isActive"`
}

func (p productPatchRequest) toPatch() productdom.Patch {
	return productdom.Patch{
		Name:         p.Name,
		Description:  p.Description,
		Price:        decimalPtr(p.Price),
		ComparePrice: decimalPtr(p.ComparePrice),
		Category:     p.Category,
		Brand:        p.Brand,
		Stock:        p.Stock,
		Images:       p.Images,
		Tags:         p.Tags,
		IsFeatured:   p.IsFeatured,
		IsActive:     p.IsActive,
	}
}

type stockRequest struct {
	Stock  *int   `json:"stock" validate:"required,gte=0"`
	Action string `json:"action" validate:"required,oneof=set add subtract"`
}

type pricingRequest struct {
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	ComparePrice *float64 `json:"comparePrice" validate:"omitempty,gte=0"`
}

type bulkUpdateRequest struct {
	ProductIDs []string            `json:"productIds" validate:"required,min=1,max=500,dive,nonblank"`
	Updates    productPatchRequest `json:"updates"`
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	var req createProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.uc.Create(r.Context(), productdom.NewInput{
		Name:         req.Name,
		Description:  req.Description,
		Price:        *decimalPtr(req.Price),
		ComparePrice: decimalPtr(req.ComparePrice),
		Category:     req.Category,
		Brand:        req.Brand,
		Stock:        *req.Stock,
		Images:       req.Images,
		Tags:         req.Tags,
		IsFeatured:   req.IsFeatured,
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	h.log.Infof("[product_handler] created id=%s", p.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Product created successfully",
		"product": toProductResponse(p),
	})
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	var req productPatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	p, err := h.uc.Update(r.Context(), id, req.toPatch())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Product updated successfully",
		"product": toProductResponse(p),
	})
}

func (h *ProductHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if err := h.uc.Delete(r.Context(), id); err != nil {
		writeErr(w, r, err)
		return
	}
	h.log.Infof("[product_handler] deactivated id=%s", id)
	writeMessage(w, http.StatusOK, "Product deleted successfully")
}

func (h *ProductHandler) adjustStock(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	var req stockRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ch, err := h.uc.AdjustStock(r.Context(), id, productdom.StockAction(req.Action), *req.Stock)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Stock updated successfully",
		"productId":     ch.ProductID,
		"previousStock": ch.PreviousStock,
		"newStock":      ch.NewStock,
		"action":        string(ch.Action),
	})
}

func (h *ProductHandler) setPricing(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	var req pricingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	p, err := h.uc.SetPricing(r.Context(), id, decimalPtr(req.Price), decimalPtr(req.ComparePrice))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Pricing updated successfully",
		"product": toProductResponse(p),
	})
}

func (h *ProductHandler) bulkUpdate(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	var req bulkUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	updated, err := h.uc.BulkUpdate(r.Context(), req.ProductIDs, req.Updates.toPatch())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	h.log.Infof("[product_handler] bulk update count=%d", len(updated))
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      strconv.Itoa(len(updated)) + " products updated successfully",
		"updatedCount": len(updated),
		"products":     toProductResponses(updated),
	})
}

func (h *ProductHandler) uploadImage(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		badRequest(w, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeValidation(w, []FieldError{{Field: "image", Message: "image is required"}})
		return
	}
	defer file.Close()

	p, err := h.uc.AttachImage(r.Context(), id, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Image uploaded successfully",
		"product": toProductResponse(p),
	})
}
