// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/common"
	orderdom "storefront/internal/domain/order"
	productdom "storefront/internal/domain/product"
	userdom "storefront/internal/domain/user"
	"storefront/internal/infra/logging"
)

var (
	ErrCartInvalidArgument    = common.NewError(common.ErrInvalidArgument, "Invalid cart request")
	ErrInvalidShippingAddress = common.NewError(common.ErrInvalidState, "Invalid shipping address")
)

// CartUsecase coordinates cart operations and checkout.
type CartUsecase struct {
	carts    cartdom.Repository
	products productdom.Repository
	users    userdom.Repository
	orders   orderdom.Repository
	ledger   orderdom.Ledger
	notify   NotifierPort
	clock    Clock
	newID    IDGenerator
	log      *logrus.Entry
}

// CartDeps groups the collaborators of CartUsecase. Ledger and Notifier may be nil.
type CartDeps struct {
	Carts    cartdom.Repository
	Products productdom.Repository
	Users    userdom.Repository
	Orders   orderdom.Repository
	Ledger   orderdom.Ledger
	Notifier NotifierPort
	Clock    Clock
	IDs      IDGenerator
}

func NewCartUsecase(d CartDeps) *CartUsecase {
	return &CartUsecase{
		carts:    d.Carts,
		products: d.Products,
		users:    d.Users,
		orders:   d.Orders,
		ledger:   d.Ledger,
		notify:   notifierOrNoop(d.Notifier),
		clock:    clockOrSystem(d.Clock),
		newID:    idsOrUUID(d.IDs),
		log:      logging.For("cart_uc"),
	}
}

// Get returns the user's cart, or an unsaved empty one when none exists.
func (uc *CartUsecase) Get(ctx context.Context, actor Actor) (*cartdom.Cart, error) {
	return uc.load(ctx, actor.UserID)
}

// AddItem snapshots the product into the cart, or increments an existing line.
func (uc *CartUsecase) AddItem(ctx context.Context, actor Actor, productID string, qty int) (*cartdom.Cart, error) {
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return nil, ErrCartInvalidArgument
	}
	if qty <= 0 {
		return nil, cartdom.ErrInvalidQuantity
	}

	p, err := uc.products.GetByID(ctx, pid)
	if err != nil {
		return nil, err
	}
	if !p.IsActive() {
		return nil, productdom.ErrNotFound
	}

	c, err := uc.load(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	snap := cartdom.CartItem{ProductID: p.ID, Name: p.Name, Price: p.Price, Image: p.PrimaryImage()}
	if err := c.Add(snap, qty, uc.clock.Now()); err != nil {
		return nil, err
	}
	return c, uc.carts.Upsert(ctx, c)
}

// SetQuantity sets a line's quantity; 0 removes it.
func (uc *CartUsecase) SetQuantity(ctx context.Context, actor Actor, productID string, qty int) (*cartdom.Cart, error) {
	c, err := uc.load(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := c.SetQty(productID, qty, uc.clock.Now()); err != nil {
		return nil, err
	}
	return c, uc.carts.Upsert(ctx, c)
}

func (uc *CartUsecase) RemoveItem(ctx context.Context, actor Actor, productID string) (*cartdom.Cart, error) {
	c, err := uc.load(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := c.Remove(productID, uc.clock.Now()); err != nil {
		return nil, err
	}
	return c, uc.carts.Upsert(ctx, c)
}

// Clear deletes the cart document.
func (uc *CartUsecase) Clear(ctx context.Context, actor Actor) error {
	return uc.carts.DeleteByUserID(ctx, actor.UserID)
}

// Checkout turns the cart into a pending order. The order write and the cart
// delete commit together.
func (uc *CartUsecase) Checkout(ctx context.Context, actor Actor, addressID, paymentMethod string) (orderdom.Order, error) {
	u, err := uc.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return orderdom.Order{}, err
	}

	// the cart is read again inside the transaction; build only sees that copy
	build := func(c *cartdom.Cart) (orderdom.Order, error) {
		lines, err := c.Snapshot()
		if err != nil {
			return orderdom.Order{}, err
		}

		addr, ok := u.Addresses.Get(strings.TrimSpace(addressID))
		if !ok {
			return orderdom.Order{}, ErrInvalidShippingAddress
		}

		items := make([]orderdom.ItemSnapshot, 0, len(lines))
		for _, it := range lines {
			items = append(items, orderdom.ItemSnapshot{
				ProductID: it.ProductID,
				Name:      it.Name,
				Price:     it.Price,
				Image:     it.Image,
				Quantity:  it.Quantity,
			})
		}
		return orderdom.New(uc.newID(), u.ID, items, shippingSnapshot(addr), paymentMethod, uc.clock.Now())
	}

	o, err := uc.orders.CreateFromCart(ctx, u.ID, build)
	if err != nil {
		return orderdom.Order{}, err
	}

	uc.log.Infof("[cart_uc] checkout ok order=%s user=%s total=%s", o.ID, u.ID, o.Total.StringFixed(2))
	afterOrderWrite(ctx, uc.log, uc.ledger, uc.notify, &u, o)
	return o, nil
}

func (uc *CartUsecase) load(ctx context.Context, userID string) (*cartdom.Cart, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrCartInvalidArgument
	}
	c, err := uc.carts.GetByUserID(ctx, uid)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	if c == nil {
		return cartdom.NewCart(uid, uc.clock.Now())
	}
	return c, nil
}
