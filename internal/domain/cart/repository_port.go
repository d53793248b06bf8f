// internal/domain/cart/repository_port.go
package cart

import "context"

// Repository is a persistence port for Cart.
//
// Storage (Firestore):
// - collection: carts
// - docId: userId
// - fields: userId, items[], total, createdAt, updatedAt, expiresAt
//
// TTL:
// - Configure Firestore TTL on the "expiresAt" field.
// - expiresAt is refreshed on each cart mutation (handled by domain via touch()).
type Repository interface {
	// GetByUserID returns (nil, nil) when the user has no cart yet.
	GetByUserID(ctx context.Context, userID string) (*Cart, error)

	// Upsert saves the cart (create or update). No compare-and-swap: concurrent
	// mutations of the same cart are last-writer-wins.
	Upsert(ctx context.Context, c *Cart) error

	DeleteByUserID(ctx context.Context, userID string) error
}
