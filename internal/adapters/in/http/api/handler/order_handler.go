// internal/adapters/in/http/api/handler/order_handler.go
package handler

import (
	"context"
	"net/http"
	"strings"

	usecase "storefront/internal/application/usecase"
	"storefront/internal/domain/common"
	orderdom "storefront/internal/domain/order"
)

type OrderService interface {
	List(ctx context.Context, actor usecase.Actor, f orderdom.Filter, page common.Page) (common.PageResult[orderdom.Order], error)
	Get(ctx context.Context, actor usecase.Actor, id string) (orderdom.Order, error)
	Create(ctx context.Context, actor usecase.Actor, lines []usecase.OrderLine, addressID, paymentMethod string) (orderdom.Order, error)
	UpdateStatus(ctx context.Context, actor usecase.Actor, id string, next orderdom.Status) (orderdom.Order, error)
	BulkUpdateStatus(ctx context.Context, actor usecase.Actor, ids []string, next orderdom.Status) ([]orderdom.Order, error)
	Summary(ctx context.Context, actor usecase.Actor) ([]orderdom.StatusSummary, error)
}

// OrderHandler serves /api/orders.
type OrderHandler struct {
	uc OrderService
}

func NewOrderHandler(uc OrderService) http.Handler {
	return &OrderHandler{uc: uc}
}

const defaultOrderPageSize = 20

func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	parts := pathParts(r, "/api/orders")

	switch {
	case len(parts) == 0:
		switch r.Method {
		case http.MethodGet:
			h.list(w, r, actor)
		case http.MethodPost:
			h.create(w, r, actor)
		default:
			methodNotAllowed(w)
		}

	case len(parts) == 2 && parts[0] == "admin" && parts[1] == "bulk-status":
		if r.Method != http.MethodPatch {
			methodNotAllowed(w)
			return
		}
		h.bulkStatus(w, r, actor)
	case len(parts) == 2 && parts[0] == "admin" && parts[1] == "summary":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.summary(w, r, actor)

	case len(parts) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.get(w, r, actor, parts[0])
	case len(parts) == 2 && parts[1] == "status":
		if r.Method != http.MethodPatch {
			methodNotAllowed(w)
			return
		}
		h.updateStatus(w, r, actor, parts[0])

	default:
		notFound(w)
	}
}

type orderLineRequest struct {
	ProductID string `json:"productId" validate:"nonblank"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

type orderCreateRequest struct {
	Items             []orderLineRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddressID string             `json:"shippingAddressId" validate:"nonblank"`
	PaymentMethod     string             `json:"paymentMethod" validate:"nonblank"`
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

type bulkStatusRequest struct {
	OrderIDs []string `json:"orderIds" validate:"required,min=1,max=500,dive,nonblank"`
	Status   string   `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request, actor usecase.Actor) {
	f := orderdom.Filter{Status: orderdom.Status(strings.TrimSpace(r.URL.Query().Get("status")))}
	if f.Status != "" && !f.Status.IsValid() {
		writeValidation(w, []FieldError{{Field: "status", Message: "status must be one of: pending, processing, shipped, delivered, cancelled"}})
		return
	}

	res, err := h.uc.List(r.Context(), actor, f, pageFrom(r, defaultOrderPageSize))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Orders []orderResponse `json:"orders"`
		pageMeta
	}{Orders: toOrderResponses(res.Items), pageMeta: metaOf(res)})
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request, actor usecase.Actor, id string) {
	o, err := h.uc.Get(r.Context(), actor, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request, actor usecase.Actor) {
	var req orderCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	lines := make([]usecase.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, usecase.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	o, err := h.uc.Create(r.Context(), actor, lines, req.ShippingAddressID, req.PaymentMethod)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Order created successfully",
		"order":   toOrderResponse(o),
	})
}

func (h *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request, actor usecase.Actor, id string) {
	var req orderStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	o, err := h.uc.UpdateStatus(r.Context(), actor, id, orderdom.Status(req.Status))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) bulkStatus(w http.ResponseWriter, r *http.Request, actor usecase.Actor) {
	var req bulkStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	updated, err := h.uc.BulkUpdateStatus(r.Context(), actor, req.OrderIDs, orderdom.Status(req.Status))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Orders updated successfully",
		"updatedCount": len(updated),
		"orders":       toOrderResponses(updated),
	})
}

type statusSummaryResponse struct {
	Status  string  `json:"status"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

func (h *OrderHandler) summary(w http.ResponseWriter, r *http.Request, actor usecase.Actor) {
	rows, err := h.uc.Summary(r.Context(), actor)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	out := make([]statusSummaryResponse, 0, len(rows))
	for _, s := range rows {
		out = append(out, statusSummaryResponse{Status: string(s.Status), Orders: s.Orders, Revenue: s.Revenue})
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": out})
}
