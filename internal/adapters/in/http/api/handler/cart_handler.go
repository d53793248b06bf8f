// internal/adapters/in/http/api/handler/cart_handler.go
package handler

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	usecase "storefront/internal/application/usecase"
	cartdom "storefront/internal/domain/cart"
	orderdom "storefront/internal/domain/order"
	"storefront/internal/infra/logging"
)

type CartService interface {
	Get(ctx context.Context, actor usecase.Actor) (*cartdom.Cart, error)
	AddItem(ctx context.Context, actor usecase.Actor, productID string, qty int) (*cartdom.Cart, error)
	SetQuantity(ctx context.Context, actor usecase.Actor, productID string, qty int) (*cartdom.Cart, error)
	RemoveItem(ctx context.Context, actor usecase.Actor, productID string) (*cartdom.Cart, error)
	Clear(ctx context.Context, actor usecase.Actor) error
	Checkout(ctx context.Context, actor usecase.Actor, addressID, paymentMethod string) (orderdom.Order, error)
}

// CartHandler serves /api/cart for the caller's own cart.
type CartHandler struct {
	uc  CartService
	log *logrus.Entry
}

func NewCartHandler(uc CartService) http.Handler {
	return &CartHandler{uc: uc, log: logging.For("cart_handler")}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErrorMsg(w, http.StatusInternalServerError, "cart handler is not configured")
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	parts := pathParts(r, "/api/cart")

	switch {
	// GET /api/cart
	case len(parts) == 0 && r.Method == http.MethodGet:
		h.get(w, r, actor)
	// POST /api/cart/add
	case len(parts) == 1 && parts[0] == "add" && r.Method == http.MethodPost:
		h.add(w, r, actor)
	// PUT /api/cart/update
	case len(parts) == 1 && parts[0] == "update" && r.Method == http.MethodPut:
		h.update(w, r, actor)
	// DELETE /api/cart/remove/{productId}
	case len(parts) == 2 && parts[0] == "remove" && r.Method == http.MethodDelete:
		h.remove(w, r, actor, parts[1])
	// DELETE /api/cart/clear
	case len(parts) == 1 && parts[0] == "clear" && r.Method == http.MethodDelete:
		h.clear(w, r, actor)
	// POST /api/cart/checkout
	case len(parts) == 1 && parts[0] == "checkout" && r.Method == http.MethodPost:
		h.checkout(w, r, actor)
	case isCartRoute(parts):
		methodNotAllowed(w)
	default:
		notFound(w)
	}
}

func isCartRoute(parts []string) bool {
	switch len(parts) {
	case 0:
		return true
	case 1:
		return parts[0] == "add" || parts[0] == "update" || parts[0] == "clear" || parts[0] == "checkout"
	case 2:
		return parts[0] == "remove"
	}
	return false
}

type cartAddRequest struct {
	ProductID string `json:"productId" validate:"nonblank"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

type cartUpdateRequest struct {
	ProductID string `json:"productId" validate:"nonblank"`
	Quantity  *int   `json:"quantity" validate:"required,gte=0"`
}

type checkoutRequest struct {
	ShippingAddressID string `json:"shippingAddressId" validate:"nonblank"`
	PaymentMethod     string `json:"paymentMethod" validate:"nonblank"`
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request, actor usecase.Actor) {
	c, err := h.uc.Get(r.Context(), actor)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(c))
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request, actor usecase.Actor) {
	var req cartAddRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	c, err := h.uc.AddItem(r.Context(), actor, req.ProductID, req.Quantity)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Item added to cart",
		"cart":    toCartResponse(c),
	})
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request, actor usecase.Actor) {
	var req cartUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	c, err := h.uc.SetQuantity(r.Context(), actor, req.ProductID, *req.Quantity)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Cart updated",
		"cart":    toCartResponse(c),
	})
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request, actor usecase.Actor, productID string) {
	c, err := h.uc.RemoveItem(r.Context(), actor, productID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Item removed from cart",
		"cart":    toCartResponse(c),
	})
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request, actor usecase.Actor) {
	if err := h.uc.Clear(r.Context(), actor); err != nil {
		writeErr(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Cart cleared")
}

func (h *CartHandler) checkout(w http.ResponseWriter, r *http.Request, actor usecase.Actor) {
	var req checkoutRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	o, err := h.uc.Checkout(r.Context(), actor, req.ShippingAddressID, req.PaymentMethod)
	if err != nil {
		h.log.WithError(err).Warnf("[cart_handler] checkout failed user=%s", actor.UserID)
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Order created successfully",
		"order":   toOrderResponse(o),
	})
}
