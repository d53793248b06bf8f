package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusShipped, false},
		{StatusCancelled, StatusPending, false},
		{StatusShipped, StatusPending, false},
		{StatusShipped, StatusShipped, true},
		{StatusPending, "refunded", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestNew(t *testing.T) {
	items := []ItemSnapshot{
		{ProductID: "a", Name: "A", Price: decimal.RequireFromString("10.50"), Quantity: 2},
		{ProductID: "b", Name: "B", Price: decimal.RequireFromString("1.25"), Quantity: 4},
	}
	o, err := New("o1", "u1", items, ShippingSnapshot{City: "X"}, "card", now)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "26.00", o.Total.StringFixed(2))

	items[0].Quantity = 50
	assert.Equal(t, 2, o.Items[0].Quantity)

	_, err = New("o2", "u1", nil, ShippingSnapshot{}, "card", now)
	assert.ErrorIs(t, err, ErrInvalidItems)

	_, err = New("o3", "u1", o.Items, ShippingSnapshot{}, " ", now)
	assert.ErrorIs(t, err, ErrInvalidPayment)
}

func TestTransitionTo(t *testing.T) {
	o, err := New("o1", "u1", []ItemSnapshot{{ProductID: "a", Price: decimal.NewFromInt(1), Quantity: 1}}, ShippingSnapshot{}, "card", now)
	require.NoError(t, err)

	later := now.Add(time.Hour)
	require.NoError(t, o.TransitionTo(StatusShipped, later))
	assert.Equal(t, later, o.UpdatedAt)

	assert.ErrorIs(t, o.TransitionTo(StatusCancelled, later), ErrInvalidTransition)
	assert.ErrorIs(t, o.TransitionTo("lost", later), ErrInvalidStatus)
}
