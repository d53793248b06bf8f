// internal/adapters/out/firestore/cart_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "storefront/internal/domain/cart"
)

// CartRepositoryFS implements cart.Repository using Firestore.
//
// Collection design:
// - collection: carts
// - docId: userId (docId is the source of truth)
// - fields: userId, items[], total, createdAt, updatedAt, expiresAt
//
// TTL:
// - Configure Firestore TTL on "expiresAt".
type CartRepositoryFS struct {
	Client *firestore.Client
}

var _ cartdom.Repository = (*CartRepositoryFS)(nil)

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client}
}

func (r *CartRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(colCarts)
}

// GetByUserID returns (nil, nil) if not found (nil policy).
func (r *CartRepositoryFS) GetByUserID(ctx context.Context, userID string) (*cartdom.Cart, error) {
	if r.Client == nil {
		return nil, errNilClient
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, errors.New("cart_repository_fs: userID is empty")
	}

	snap, err := r.col().Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c, err := docToCart(snap)
	if err != nil {
		return nil, err
	}
	c.UserID = uid
	return c, nil
}

// Upsert overwrites the full document (simple & predictable).
func (r *CartRepositoryFS) Upsert(ctx context.Context, c *cartdom.Cart) error {
	if r.Client == nil {
		return errNilClient
	}
	if c == nil {
		return errors.New("cart_repository_fs: cart is nil")
	}
	uid := strings.TrimSpace(c.UserID)
	if uid == "" {
		return errors.New("cart_repository_fs: Upsert requires cart.UserID as docId")
	}
	_, err := r.col().Doc(uid).Set(ctx, cartToDoc(c))
	return err
}

func (r *CartRepositoryFS) DeleteByUserID(ctx context.Context, userID string) error {
	if r.Client == nil {
		return errNilClient
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return errors.New("cart_repository_fs: userID is empty")
	}
	_, err := r.col().Doc(uid).Delete(ctx)
	return err
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type cartDoc struct {
	UserID    string        `firestore:"userId"`
	Items     []cartItemDoc `firestore:"items"`
	Total     float64       `firestore:"total"`
	CreatedAt time.Time     `firestore:"createdAt"`
	UpdatedAt time.Time     `firestore:"updatedAt"`
	ExpiresAt time.Time     `firestore:"expiresAt"`
}

type cartItemDoc struct {
	ProductID string  `firestore:"productId"`
	Name      string  `firestore:"name"`
	Price     float64 `firestore:"price"`
	Image     string  `firestore:"image"`
	Quantity  int     `firestore:"quantity"`
}

func cartToDoc(c *cartdom.Cart) cartDoc {
	items := make([]cartItemDoc, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, cartItemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     toFloat(it.Price),
			Image:     it.Image,
			Quantity:  it.Quantity,
		})
	}
	return cartDoc{
		UserID:    c.UserID,
		Items:     items,
		Total:     toFloat(cartdom.ComputeTotal(c.Items)),
		CreatedAt: c.CreatedAt.UTC(),
		UpdatedAt: c.UpdatedAt.UTC(),
		ExpiresAt: c.ExpiresAt.UTC(),
	}
}

// docToCart recomputes the total from the lines instead of trusting the stored value.
func docToCart(snap *firestore.DocumentSnapshot) (*cartdom.Cart, error) {
	var d cartDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, err
	}
	items := make([]cartdom.CartItem, 0, len(d.Items))
	for _, it := range d.Items {
		if strings.TrimSpace(it.ProductID) == "" || it.Quantity <= 0 {
			continue
		}
		items = append(items, cartdom.CartItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     fromFloat(it.Price),
			Image:     it.Image,
			Quantity:  it.Quantity,
		})
	}
	return &cartdom.Cart{
		UserID:    d.UserID,
		Items:     items,
		Total:     cartdom.ComputeTotal(items),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
		ExpiresAt: d.ExpiresAt.UTC(),
	}, nil
}
