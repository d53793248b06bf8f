package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/common"
	orderdom "storefront/internal/domain/order"
	productdom "storefront/internal/domain/product"
	userdom "storefront/internal/domain/user"
)

type cartFixture struct {
	uc       *CartUsecase
	carts    *memCarts
	products *memProducts
	users    *memUsers
	orders   *memOrders
	ledger   *memLedger
	notifier *recordingNotifier
	clock    *fixedClock
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()

	u := customer("u1")
	book, _, err := u.Addresses.Add("addr-1", userdom.AddressFields{
		Street: strp("1 Main"), City: strp("Town"), State: strp("CA"), ZipCode: strp("90000"), Country: strp("US"),
	}, false, t0)
	require.NoError(t, err)
	u.Addresses = book

	f := &cartFixture{
		carts:    newMemCarts(),
		products: newMemProducts(product("p1", "electronics", "19.99", 10), product("p2", "books", "5.50", 3)),
		users:    newMemUsers(u, customer("u2")),
		ledger:   &memLedger{},
		notifier: &recordingNotifier{},
		clock:    &fixedClock{t: t0},
	}
	f.orders = newMemOrders(f.carts, f.products)
	f.uc = NewCartUsecase(CartDeps{
		Carts:    f.carts,
		Products: f.products,
		Users:    f.users,
		Orders:   f.orders,
		Ledger:   f.ledger,
		Notifier: f.notifier,
		Clock:    f.clock,
		IDs:      seqIDs("order"),
	})
	return f
}

func strp(s string) *string { return &s }

func TestCartUsecase_GetMissingCartIsEmpty(t *testing.T) {
	f := newCartFixture(t)

	c, err := f.uc.Get(context.Background(), actorFor("u1"))
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.True(t, c.Total.IsZero())
}

func TestCartUsecase_AddItemSnapshotsProduct(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	c, err := f.uc.AddItem(ctx, actorFor("u1"), "p1", 2)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Product p1", c.Items[0].Name)
	assert.Equal(t, "p1.jpg", c.Items[0].Image)
	assert.Equal(t, "39.98", c.Total.StringFixed(2))

	c, err = f.uc.AddItem(ctx, actorFor("u1"), "p1", 1)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)

	stored, _ := f.carts.GetByUserID(ctx, "u1")
	assert.Equal(t, "59.97", stored.Total.StringFixed(2))
}

func TestCartUsecase_AddItemRejectsMissingOrInactiveProduct(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.uc.AddItem(ctx, actorFor("u1"), "nope", 1)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	p := product("gone", "books", "1.00", 1)
	p.Lifecycle = common.Inactive
	f.products.put(p)
	_, err = f.uc.AddItem(ctx, actorFor("u1"), "gone", 1)
	assert.ErrorIs(t, err, productdom.ErrNotFound)
}

func TestCartUsecase_SetQuantity(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.uc.SetQuantity(ctx, actorFor("u1"), "p1", 2)
	assert.ErrorIs(t, err, cartdom.ErrItemNotFound)

	_, err = f.uc.AddItem(ctx, actorFor("u1"), "p1", 1)
	require.NoError(t, err)
	c, err := f.uc.SetQuantity(ctx, actorFor("u1"), "p1", 0)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestCartUsecase_CheckoutEmptyCart(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.uc.Checkout(context.Background(), actorFor("u1"), "addr-1", "card")
	assert.ErrorIs(t, err, cartdom.ErrEmpty)
	assert.True(t, errors.Is(err, common.ErrInvalidState))
}

func TestCartUsecase_CheckoutForeignAddress(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.uc.AddItem(ctx, actorFor("u2"), "p1", 1)
	require.NoError(t, err)

	// addr-1 belongs to u1
	_, err = f.uc.Checkout(ctx, actorFor("u2"), "addr-1", "card")
	assert.ErrorIs(t, err, ErrInvalidShippingAddress)
	assert.True(t, errors.Is(err, common.ErrInvalidState))
}

func TestCartUsecase_CheckoutFreezesCartPrices(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.uc.AddItem(ctx, actorFor("u1"), "p1", 2)
	require.NoError(t, err)
	_, err = f.uc.AddItem(ctx, actorFor("u1"), "p2", 1)
	require.NoError(t, err)

	// live price changes after the items were carted
	p1, _ := f.products.GetByID(ctx, "p1")
	p1.Price = decimal.RequireFromString("99.00")
	f.products.put(p1)

	f.clock.Advance(time.Minute)
	o, err := f.uc.Checkout(ctx, actorFor("u1"), "addr-1", "card")
	require.NoError(t, err)

	assert.Equal(t, orderdom.StatusPending, o.Status)
	assert.Equal(t, "19.99", o.Items[0].Price.StringFixed(2))
	assert.Equal(t, "45.48", o.Total.StringFixed(2))
	assert.Equal(t, "addr-1", o.ShippingAddress.AddressID)
	assert.Equal(t, "Town", o.ShippingAddress.City)

	orders, _ := f.orders.List(ctx, orderdom.Filter{UserID: "u1"})
	assert.Len(t, orders, 1)

	c, err := f.uc.Get(ctx, actorFor("u1"))
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	assert.Len(t, f.ledger.recorded, 1)
	assert.Equal(t, []string{o.ID}, f.notifier.placed)
}

func TestCartUsecase_CheckoutOrdersItemsAddedDuringCheckout(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.uc.AddItem(ctx, actorFor("u1"), "p1", 1)
	require.NoError(t, err)

	// a second tab adds p2 after Checkout started
	f.orders.beforeCheckout = func() {
		_, err := f.uc.AddItem(ctx, actorFor("u1"), "p2", 2)
		require.NoError(t, err)
	}

	o, err := f.uc.Checkout(ctx, actorFor("u1"), "addr-1", "card")
	require.NoError(t, err)

	require.Len(t, o.Items, 2)
	assert.Equal(t, "p1", o.Items[0].ProductID)
	assert.Equal(t, "p2", o.Items[1].ProductID)
	assert.Equal(t, 2, o.Items[1].Quantity)
	assert.Equal(t, "30.99", o.Total.StringFixed(2))

	c, err := f.uc.Get(ctx, actorFor("u1"))
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestCartUsecase_CheckoutFailureKeepsCart(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.uc.AddItem(ctx, actorFor("u1"), "p1", 1)
	require.NoError(t, err)

	f.orders.failNext = errors.New("transaction aborted")
	_, err = f.uc.Checkout(ctx, actorFor("u1"), "addr-1", "card")
	require.Error(t, err)

	c, _ := f.uc.Get(ctx, actorFor("u1"))
	assert.Len(t, c.Items, 1)
	orders, _ := f.orders.List(ctx, orderdom.Filter{})
	assert.Empty(t, orders)
}

func TestCartUsecase_Clear(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	_, err := f.uc.AddItem(ctx, actorFor("u1"), "p1", 1)
	require.NoError(t, err)
	require.NoError(t, f.uc.Clear(ctx, actorFor("u1")))

	stored, err := f.carts.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}
