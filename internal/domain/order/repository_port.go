// internal/domain/order/repository_port.go
package order

import (
	"context"
	"time"

	"storefront/internal/domain/cart"
)

// Filter narrows listings. Empty fields mean unfiltered.
type Filter struct {
	UserID string
	Status Status
}

// CheckoutBuilder turns the cart read inside the checkout transaction into an order.
// c is nil when the user has no cart. It may run more than once if the transaction retries.
type CheckoutBuilder func(c *cart.Cart) (Order, error)

// Repository is a persistence port for Order.
type Repository interface {
	GetByID(ctx context.Context, id string) (Order, error)

	// List returns orders ordered by createdAt desc.
	List(ctx context.Context, f Filter) ([]Order, error)

	// CreateFromCart reads the cart of userID, builds the order from it, stores the
	// order and deletes the cart, all in one transaction.
	CreateFromCart(ctx context.Context, userID string, build CheckoutBuilder) (Order, error)

	// CreateWithStock stores o and decrements product stock for every line in one
	// transaction; a line whose product lacks stock aborts everything.
	CreateWithStock(ctx context.Context, o Order) error

	// UpdateStatus applies TransitionTo inside a transaction.
	UpdateStatus(ctx context.Context, id string, next Status, now time.Time) (Order, error)

	// UpdateStatusMany transitions every id or none.
	UpdateStatusMany(ctx context.Context, ids []string, next Status, now time.Time) ([]Order, error)
}

// Ledger mirrors order events into a reporting store.
type Ledger interface {
	Record(ctx context.Context, o Order) error
	Summary(ctx context.Context) ([]StatusSummary, error)
}

// StatusSummary is one row of the ledger report.
type StatusSummary struct {
	Status  Status
	Orders  int
	Revenue float64
}
