// internal/adapters/out/firestore/order_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "storefront/internal/domain/cart"
	orderdom "storefront/internal/domain/order"
	productdom "storefront/internal/domain/product"
	"storefront/internal/infra/logging"
)

// OrderRepositoryFS implements order.Repository using Firestore.
//
// Every write that touches more than one document (order + cart, order + stock,
// bulk status) runs in a single RunTransaction.
type OrderRepositoryFS struct {
	Client *firestore.Client
}

var _ orderdom.Repository = (*OrderRepositoryFS)(nil)

func NewOrderRepositoryFS(client *firestore.Client) *OrderRepositoryFS {
	return &OrderRepositoryFS{Client: client}
}

func (r *OrderRepositoryFS) ordersCol() *firestore.CollectionRef {
	return r.Client.Collection(colOrders)
}

func (r *OrderRepositoryFS) GetByID(ctx context.Context, id string) (orderdom.Order, error) {
	if r.Client == nil {
		return orderdom.Order{}, errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	snap, err := r.ordersCol().Doc(id).Get(ctx)
	if err != nil {
		return orderdom.Order{}, mapReadErr(err, orderdom.ErrNotFound)
	}
	return docToOrder(snap)
}

// List sorts in memory so userId/status filters need no composite index.
func (r *OrderRepositoryFS) List(ctx context.Context, f orderdom.Filter) ([]orderdom.Order, error) {
	if r.Client == nil {
		return nil, errNilClient
	}
	q := r.ordersCol().Query
	if uid := strings.TrimSpace(f.UserID); uid != "" {
		q = q.Where("userId", "==", uid)
	}
	if f.Status != "" {
		q = q.Where("status", "==", string(f.Status))
	}
	orders, err := collect(ctx, q, docToOrder)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

// CreateFromCart reads carts/{userId} inside the transaction so that items added
// after the caller looked at the cart are either ordered or the commit retries.
func (r *OrderRepositoryFS) CreateFromCart(ctx context.Context, userID string, build orderdom.CheckoutBuilder) (orderdom.Order, error) {
	if r.Client == nil {
		return orderdom.Order{}, errNilClient
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return orderdom.Order{}, errors.New("order_repository_fs: userID is empty")
	}
	cartRef := r.Client.Collection(colCarts).Doc(uid)

	var o orderdom.Order
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var c *cartdom.Cart
		snap, err := tx.Get(cartRef)
		switch {
		case status.Code(err) == codes.NotFound:
			// no cart: build reports it as empty
		case err != nil:
			return err
		default:
			if c, err = docToCart(snap); err != nil {
				return err
			}
			c.UserID = uid
		}

		built, err := build(c)
		if err != nil {
			return err
		}
		if err := tx.Create(r.ordersCol().Doc(built.ID), orderToDoc(built)); err != nil {
			return err
		}
		o = built
		return tx.Delete(cartRef)
	})
	if err != nil {
		return orderdom.Order{}, mapCreateErr(err, alreadyExists("Order"))
	}
	logging.For("order_repo_fs").Debugf("[order_repo_fs] CreateFromCart OK order=%s user=%s items=%d", o.ID, uid, len(o.Items))
	return o, nil
}

// CreateWithStock re-reads every product inside the transaction, decrements stock and writes the order.
func (r *OrderRepositoryFS) CreateWithStock(ctx context.Context, o orderdom.Order) error {
	if r.Client == nil {
		return errNilClient
	}
	orderRef := r.ordersCol().Doc(o.ID)
	productRefs := make([]*firestore.DocumentRef, 0, len(o.Items))
	for _, it := range o.Items {
		productRefs = append(productRefs, r.Client.Collection(colProducts).Doc(it.ProductID))
	}

	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snaps, err := tx.GetAll(productRefs)
		if err != nil {
			return err
		}

		// reads first, then writes (Firestore transaction rule)
		remaining := make([]int, len(snaps))
		for i, snap := range snaps {
			if !snap.Exists() {
				return productdom.ErrNotFound
			}
			p, err := docToProduct(snap)
			if err != nil {
				return err
			}
			if !p.IsActive() {
				return productdom.ErrNotFound
			}
			if p.Stock < o.Items[i].Quantity {
				return orderdom.InsufficientStock(p.Name)
			}
			remaining[i] = p.Stock - o.Items[i].Quantity
		}

		for i, ref := range productRefs {
			if err := tx.Update(ref, []firestore.Update{
				{Path: "stock", Value: remaining[i]},
				{Path: "updatedAt", Value: o.CreatedAt.UTC()},
			}); err != nil {
				return err
			}
		}
		return tx.Create(orderRef, orderToDoc(o))
	})
	if err != nil {
		return mapCreateErr(err, alreadyExists("Order"))
	}
	return nil
}

func (r *OrderRepositoryFS) UpdateStatus(ctx context.Context, id string, next orderdom.Status, now time.Time) (orderdom.Order, error) {
	updated, err := r.UpdateStatusMany(ctx, []string{strings.TrimSpace(id)}, next, now)
	if err != nil {
		return orderdom.Order{}, err
	}
	return updated[0], nil
}

// UpdateStatusMany transitions every order or none.
func (r *OrderRepositoryFS) UpdateStatusMany(ctx context.Context, ids []string, next orderdom.Status, now time.Time) ([]orderdom.Order, error) {
	if r.Client == nil {
		return nil, errNilClient
	}
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			return nil, orderdom.ErrNotFound
		}
		refs = append(refs, r.ordersCol().Doc(id))
	}

	var updated []orderdom.Order
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		updated = make([]orderdom.Order, 0, len(refs))

		snaps, err := tx.GetAll(refs)
		if err != nil {
			return err
		}
		for _, snap := range snaps {
			if !snap.Exists() {
				return orderdom.ErrNotFound
			}
			o, err := docToOrder(snap)
			if err != nil {
				return err
			}
			if err := o.TransitionTo(next, now); err != nil {
				return err
			}
			updated = append(updated, o)
		}
		for i, o := range updated {
			if err := tx.Update(refs[i], []firestore.Update{
				{Path: "status", Value: string(o.Status)},
				{Path: "updatedAt", Value: o.UpdatedAt.UTC()},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type orderDoc struct {
	UserID          string         `firestore:"userId"`
	Items           []orderItemDoc `firestore:"items"`
	Total           float64        `firestore:"total"`
	ShippingAddress shippingDoc    `firestore:"shippingAddress"`
	PaymentMethod   string         `firestore:"paymentMethod"`
	Status          string         `firestore:"status"`
	CreatedAt       time.Time      `firestore:"createdAt"`
	UpdatedAt       time.Time      `firestore:"updatedAt"`
}

type orderItemDoc struct {
	ProductID string  `firestore:"productId"`
	Name      string  `firestore:"name"`
	Price     float64 `firestore:"price"`
	Image     string  `firestore:"image"`
	Quantity  int     `firestore:"quantity"`
}

type shippingDoc struct {
	AddressID   string `firestore:"addressId"`
	Type        string `firestore:"type"`
	FirstName   string `firestore:"firstName"`
	LastName    string `firestore:"lastName"`
	Street      string `firestore:"street"`
	City        string `firestore:"city"`
	State       string `firestore:"state"`
	ZipCode     string `firestore:"zipCode"`
	Country     string `firestore:"country"`
	PhoneNumber string `firestore:"phoneNumber,omitempty"`
}

func orderToDoc(o orderdom.Order) orderDoc {
	items := make([]orderItemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     toFloat(it.Price),
			Image:     it.Image,
			Quantity:  it.Quantity,
		})
	}
	s := o.ShippingAddress
	return orderDoc{
		UserID: o.UserID,
		Items:  items,
		Total:  toFloat(o.Total),
		ShippingAddress: shippingDoc{
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
		CreatedAt:     o.CreatedAt.UTC(),
		UpdatedAt:     o.UpdatedAt.UTC(),
	}
}

func docToOrder(snap *firestore.DocumentSnapshot) (orderdom.Order, error) {
	var d orderDoc
	if err := snap.DataTo(&d); err != nil {
		return orderdom.Order{}, err
	}
	items := make([]orderdom.ItemSnapshot, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, orderdom.ItemSnapshot{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     fromFloat(it.Price),
			Image:     it.Image,
			Quantity:  it.Quantity,
		})
	}
	s := d.ShippingAddress
	return orderdom.Order{
		ID:     snap.Ref.ID,
		UserID: d.UserID,
		Items:  items,
		Total:  fromFloat(d.Total),
		ShippingAddress: orderdom.ShippingSnapshot{
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
		PaymentMethod: d.PaymentMethod,
		Status:        orderdom.Status(d.Status),
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}, nil
}
