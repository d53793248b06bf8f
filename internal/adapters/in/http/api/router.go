// internal/adapters/in/http/api/router.go
package api

import (
	"net/http"

	"storefront/internal/infra/logging"
)

// Deps is the /api handler set. Each handler is already wrapped with its auth middleware.
type Deps struct {
	Products   http.Handler
	Categories http.Handler
	Users      http.Handler
	Addresses  http.Handler
	Cart       http.Handler
	Orders     http.Handler
	Auth       http.Handler
}

// handleSafe registers pattern with h.
// If h is nil, it logs and registers NotFoundHandler instead (so Cloud Run won't crash).
func handleSafe(mux *http.ServeMux, pattern string, h http.Handler, name string) {
	if h == nil {
		logging.For("api.router").Warnf("[api.router] WARN: nil handler: %s pattern=%s (registering NotFoundHandler)", name, pattern)
		h = http.NotFoundHandler()
	}
	mux.Handle(pattern, h)
}

// Register registers /api routes onto mux. Both "/x" and "/x/" are mounted so the
// collection root works without a trailing slash.
func Register(mux *http.ServeMux, deps Deps) {
	if mux == nil {
		return
	}

	handleSafe(mux, "/api/products", deps.Products, "Products")
	handleSafe(mux, "/api/products/", deps.Products, "Products")

	handleSafe(mux, "/api/categories", deps.Categories, "Categories")
	handleSafe(mux, "/api/categories/", deps.Categories, "Categories")

	handleSafe(mux, "/api/users", deps.Users, "Users")
	handleSafe(mux, "/api/users/", deps.Users, "Users")

	handleSafe(mux, "/api/addresses", deps.Addresses, "Addresses")
	handleSafe(mux, "/api/addresses/", deps.Addresses, "Addresses")

	handleSafe(mux, "/api/cart", deps.Cart, "Cart")
	handleSafe(mux, "/api/cart/", deps.Cart, "Cart")

	handleSafe(mux, "/api/orders", deps.Orders, "Orders")
	handleSafe(mux, "/api/orders/", deps.Orders, "Orders")

	handleSafe(mux, "/api/auth/", deps.Auth, "Auth")
}
