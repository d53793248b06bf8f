package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/common"
	orderdom "storefront/internal/domain/order"
	userdom "storefront/internal/domain/user"
)

func newOrderFixture(t *testing.T) (*OrderUsecase, *memOrders, *memProducts, *memLedger) {
	t.Helper()

	u := customer("u1")
	book, _, err := u.Addresses.Add("addr-1", userdom.AddressFields{
		Street: strp("1 Main"), City: strp("Town"), State: strp("CA"), ZipCode: strp("90000"), Country: strp("US"),
	}, false, t0)
	require.NoError(t, err)
	u.Addresses = book

	products := newMemProducts(product("p1", "electronics", "10.00", 5), product("p2", "books", "2.50", 1))
	orders := newMemOrders(newMemCarts(), products)
	ledger := &memLedger{}
	uc := NewOrderUsecase(OrderDeps{
		Orders:   orders,
		Products: products,
		Users:    newMemUsers(u, customer("u2")),
		Ledger:   ledger,
		Clock:    &fixedClock{t: t0},
		IDs:      seqIDs("order"),
	})
	return uc, orders, products, ledger
}

func seedOrders(t *testing.T, orders *memOrders, userID string, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		o, err := orderdom.New(fmt.Sprintf("%s-o%d", userID, i), userID,
			[]orderdom.ItemSnapshot{{ProductID: "p1", Name: "Product p1", Price: product("p1", "x", "10.00", 1).Price, Quantity: 1}},
			orderdom.ShippingSnapshot{AddressID: "addr-1"}, "card", t0)
		require.NoError(t, err)
		orders.byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	return ids
}

func TestOrderUsecase_CreateDecrementsStock(t *testing.T) {
	uc, _, products, ledger := newOrderFixture(t)
	ctx := context.Background()

	o, err := uc.Create(ctx, actorFor("u1"), []OrderLine{{ProductID: "p1", Quantity: 2}, {ProductID: "p1", Quantity: 1}}, "addr-1", "card")
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 3, o.Items[0].Quantity)
	assert.Equal(t, "30.00", o.Total.StringFixed(2))

	p1, _ := products.GetByID(ctx, "p1")
	assert.Equal(t, 2, p1.Stock)
	assert.Len(t, ledger.recorded, 1)
}

func TestOrderUsecase_CreateInsufficientStock(t *testing.T) {
	uc, orders, products, _ := newOrderFixture(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, actorFor("u1"), []OrderLine{{ProductID: "p1", Quantity: 1}, {ProductID: "p2", Quantity: 2}}, "addr-1", "card")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidState))
	assert.Contains(t, common.Message(err), "Product p2")

	p1, _ := products.GetByID(ctx, "p1")
	assert.Equal(t, 5, p1.Stock)
	all, _ := orders.List(ctx, orderdom.Filter{})
	assert.Empty(t, all)
}

func TestOrderUsecase_ListScopesToCaller(t *testing.T) {
	uc, orders, _, _ := newOrderFixture(t)
	ctx := context.Background()
	seedOrders(t, orders, "u1", 2)
	seedOrders(t, orders, "u2", 3)

	mine, err := uc.List(ctx, actorFor("u1"), orderdom.Filter{UserID: "u2"}, common.Page{Number: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, mine.TotalCount)

	all, err := uc.List(ctx, adminActor, orderdom.Filter{}, common.Page{Number: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, all.TotalCount)
}

func TestOrderUsecase_GetForeignOrder(t *testing.T) {
	uc, orders, _, _ := newOrderFixture(t)
	ids := seedOrders(t, orders, "u2", 1)

	_, err := uc.Get(context.Background(), actorFor("u1"), ids[0])
	assert.ErrorIs(t, err, userdom.ErrNotOwner)

	o, err := uc.Get(context.Background(), adminActor, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "u2", o.UserID)
}

func TestOrderUsecase_UpdateStatus(t *testing.T) {
	uc, orders, _, _ := newOrderFixture(t)
	ctx := context.Background()
	ids := seedOrders(t, orders, "u1", 1)

	_, err := uc.UpdateStatus(ctx, actorFor("u1"), ids[0], orderdom.StatusShipped)
	assert.ErrorIs(t, err, userdom.ErrInsufficient)

	o, err := uc.UpdateStatus(ctx, adminActor, ids[0], orderdom.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, orderdom.StatusShipped, o.Status)

	_, err = uc.UpdateStatus(ctx, adminActor, ids[0], orderdom.StatusCancelled)
	assert.ErrorIs(t, err, orderdom.ErrInvalidTransition)

	_, err = uc.UpdateStatus(ctx, adminActor, ids[0], orderdom.Status("lost"))
	assert.ErrorIs(t, err, orderdom.ErrInvalidStatus)
}

func TestOrderUsecase_BulkUpdateStatusTouchesOnlyListed(t *testing.T) {
	uc, orders, _, _ := newOrderFixture(t)
	ctx := context.Background()
	ids := seedOrders(t, orders, "u1", 6)

	updated, err := uc.BulkUpdateStatus(ctx, adminActor, ids[:5], orderdom.StatusShipped)
	require.NoError(t, err)
	assert.Len(t, updated, 5)

	for _, id := range ids[:5] {
		o, _ := orders.GetByID(ctx, id)
		assert.Equal(t, orderdom.StatusShipped, o.Status)
	}
	last, _ := orders.GetByID(ctx, ids[5])
	assert.Equal(t, orderdom.StatusPending, last.Status)
}

func TestOrderUsecase_BulkUpdateStatusIsAllOrNothing(t *testing.T) {
	uc, orders, _, _ := newOrderFixture(t)
	ctx := context.Background()
	ids := seedOrders(t, orders, "u1", 2)

	_, err := uc.BulkUpdateStatus(ctx, adminActor, append(ids, "missing"), orderdom.StatusProcessing)
	assert.ErrorIs(t, err, orderdom.ErrNotFound)

	for _, id := range ids {
		o, _ := orders.GetByID(ctx, id)
		assert.Equal(t, orderdom.StatusPending, o.Status)
	}

	tooMany := make([]string, MaxBulkWrites+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("id-%d", i)
	}
	_, err = uc.BulkUpdateStatus(ctx, adminActor, tooMany, orderdom.StatusProcessing)
	assert.ErrorIs(t, err, ErrTooManyIDs)
}

func TestOrderUsecase_SummaryNeedsLedger(t *testing.T) {
	uc := NewOrderUsecase(OrderDeps{Orders: newMemOrders(newMemCarts(), newMemProducts())})

	_, err := uc.Summary(context.Background(), adminActor)
	assert.ErrorIs(t, err, ErrLedgerDisabled)

	_, err = uc.Summary(context.Background(), actorFor("u1"))
	assert.ErrorIs(t, err, userdom.ErrInsufficient)
}
