package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userdom "storefront/internal/domain/user"
)

func homeAddress(street string) userdom.AddressFields {
	return userdom.AddressFields{
		Street: strp(street), City: strp("Town"), State: strp("CA"), ZipCode: strp("90000"), Country: strp("US"),
	}
}

func TestAddressUsecase_FirstAddressIsDefault(t *testing.T) {
	users := newMemUsers(customer("u1"))
	uc := NewAddressUsecase(users, &fixedClock{t: t0}, seqIDs("addr"))
	ctx := context.Background()

	a, err := uc.Create(ctx, actorFor("u1"), homeAddress("1 Main"), false)
	require.NoError(t, err)
	assert.Equal(t, "addr-1", a.ID)
	assert.True(t, a.IsDefault)

	b, err := uc.Create(ctx, actorFor("u1"), homeAddress("2 Side"), true)
	require.NoError(t, err)
	assert.True(t, b.IsDefault)

	list, err := uc.List(ctx, actorFor("u1"))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].IsDefault)
	assert.True(t, list[1].IsDefault)
}

func TestAddressUsecase_DeleteDefaultPromotesNext(t *testing.T) {
	users := newMemUsers(customer("u1"))
	uc := NewAddressUsecase(users, &fixedClock{t: t0}, seqIDs("addr"))
	ctx := context.Background()

	_, err := uc.Create(ctx, actorFor("u1"), homeAddress("1 Main"), false)
	require.NoError(t, err)
	_, err = uc.Create(ctx, actorFor("u1"), homeAddress("2 Side"), false)
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, actorFor("u1"), "addr-1"))

	list, err := uc.List(ctx, actorFor("u1"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "addr-2", list[0].ID)
	assert.True(t, list[0].IsDefault)
}

func TestAddressUsecase_SetDefaultAndMissing(t *testing.T) {
	users := newMemUsers(customer("u1"))
	uc := NewAddressUsecase(users, &fixedClock{t: t0}, seqIDs("addr"))
	ctx := context.Background()

	_, err := uc.Create(ctx, actorFor("u1"), homeAddress("1 Main"), false)
	require.NoError(t, err)
	_, err = uc.Create(ctx, actorFor("u1"), homeAddress("2 Side"), false)
	require.NoError(t, err)

	a, err := uc.SetDefault(ctx, actorFor("u1"), "addr-2")
	require.NoError(t, err)
	assert.True(t, a.IsDefault)

	first, err := uc.Get(ctx, actorFor("u1"), "addr-1")
	require.NoError(t, err)
	assert.False(t, first.IsDefault)

	_, err = uc.SetDefault(ctx, actorFor("u1"), "nope")
	assert.ErrorIs(t, err, userdom.ErrAddressNotFound)
	_, err = uc.Get(ctx, actorFor("u2"), "addr-1")
	assert.Error(t, err)
}

func TestAddressUsecase_InvalidAddressLeavesBookUntouched(t *testing.T) {
	users := newMemUsers(customer("u1"))
	uc := NewAddressUsecase(users, &fixedClock{t: t0}, seqIDs("addr"))

	_, err := uc.Create(context.Background(), actorFor("u1"), userdom.AddressFields{Street: strp("only street")}, false)
	assert.ErrorIs(t, err, userdom.ErrInvalidAddress)

	u, _ := users.GetByID(context.Background(), "u1")
	assert.Empty(t, u.Addresses)
}
