package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/common"
	productdom "storefront/internal/domain/product"
)

type recordingImages struct {
	path, contentType, body string
}

func (r *recordingImages) Upload(_ context.Context, objectPath, contentType string, rd io.Reader) (string, error) {
	b, err := io.ReadAll(rd)
	if err != nil {
		return "", err
	}
	r.path, r.contentType, r.body = objectPath, contentType, string(b)
	return "https://storage.googleapis.com/bucket/" + objectPath, nil
}

func TestProductUsecase_GetHidesInactiveFromCustomers(t *testing.T) {
	p := product("p1", "books", "1.00", 1)
	p.Lifecycle = common.Inactive
	uc := NewProductUsecase(newMemProducts(p), nil, nil, nil)

	_, err := uc.Get(context.Background(), actorFor("u1"), "p1")
	assert.ErrorIs(t, err, productdom.ErrNotFound)

	got, err := uc.Get(context.Background(), adminActor, "p1")
	require.NoError(t, err)
	assert.False(t, got.IsActive())
}

func TestProductUsecase_CreateAndUpdate(t *testing.T) {
	repo := newMemProducts()
	uc := NewProductUsecase(repo, nil, &fixedClock{t: t0}, seqIDs("prod"))
	ctx := context.Background()

	p, err := uc.Create(ctx, productdom.NewInput{
		Name: "Lamp", Price: decimal.RequireFromString("12.50"), Category: "home", Brand: "acme", Stock: 4,
		Images: []string{"lamp.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "prod-1", p.ID)
	assert.True(t, p.IsActive())

	_, err = uc.Update(ctx, p.ID, productdom.Patch{})
	assert.ErrorIs(t, err, ErrProductInvalidArgument)

	name := "Desk Lamp"
	p, err = uc.Update(ctx, p.ID, productdom.Patch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", p.Name)
}

func TestProductUsecase_DeleteIsSoft(t *testing.T) {
	repo := newMemProducts(product("p1", "books", "1.00", 1))
	uc := NewProductUsecase(repo, nil, &fixedClock{t: t0}, nil)

	require.NoError(t, uc.Delete(context.Background(), "p1"))
	p, err := repo.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, p.IsActive())
}

func TestProductUsecase_AdjustStock(t *testing.T) {
	repo := newMemProducts(product("p1", "books", "1.00", 5))
	uc := NewProductUsecase(repo, nil, &fixedClock{t: t0}, nil)
	ctx := context.Background()

	ch, err := uc.AdjustStock(ctx, "p1", productdom.StockSubtract, 9)
	require.NoError(t, err)
	assert.Equal(t, 5, ch.PreviousStock)
	assert.Equal(t, 0, ch.NewStock)

	ch, err = uc.AdjustStock(ctx, "p1", productdom.StockAdd, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, ch.NewStock)

	_, err = uc.AdjustStock(ctx, "p1", productdom.StockAction("double"), 1)
	assert.ErrorIs(t, err, productdom.ErrInvalidAction)
}

func TestProductUsecase_BulkUpdateIsAtomic(t *testing.T) {
	repo := newMemProducts(product("p1", "books", "1.00", 1), product("p2", "books", "2.00", 1))
	uc := NewProductUsecase(repo, nil, &fixedClock{t: t0}, nil)
	ctx := context.Background()

	featured := true
	_, err := uc.BulkUpdate(ctx, []string{"p1", "missing"}, productdom.Patch{IsFeatured: &featured})
	assert.ErrorIs(t, err, productdom.ErrNotFound)
	p1, _ := repo.GetByID(ctx, "p1")
	assert.False(t, p1.IsFeatured)

	updated, err := uc.BulkUpdate(ctx, []string{"p1", "p2", "p1"}, productdom.Patch{IsFeatured: &featured})
	require.NoError(t, err)
	assert.Len(t, updated, 2)

	_, err = uc.BulkUpdate(ctx, nil, productdom.Patch{IsFeatured: &featured})
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))
}

func TestProductUsecase_Related(t *testing.T) {
	repo := newMemProducts(
		product("p1", "books", "1.00", 1),
		product("p2", "books", "1.00", 1),
		product("p3", "toys", "1.00", 1),
	)
	uc := NewProductUsecase(repo, nil, nil, nil)

	got, err := uc.Related(context.Background(), "p1")
	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.NotContains(t, ids, "p1")
	assert.ElementsMatch(t, []string{"p2", "p3"}, ids)
}

func TestProductUsecase_AdminListFiltersLifecycle(t *testing.T) {
	off := product("p2", "books", "1.00", 1)
	off.Lifecycle = common.Inactive
	uc := NewProductUsecase(newMemProducts(product("p1", "books", "1.00", 1), off), nil, nil, nil)
	ctx := context.Background()
	page := common.Page{Number: 1, PerPage: 10}

	all, err := uc.AdminList(ctx, LifecycleAll, page)
	require.NoError(t, err)
	assert.Equal(t, 2, all.TotalCount)

	inactive, err := uc.AdminList(ctx, LifecycleInactive, page)
	require.NoError(t, err)
	require.Len(t, inactive.Items, 1)
	assert.Equal(t, "p2", inactive.Items[0].ID)
}

func TestProductUsecase_AttachImage(t *testing.T) {
	repo := newMemProducts(product("p1", "books", "1.00", 1))
	ctx := context.Background()

	_, err := NewProductUsecase(repo, nil, nil, nil).AttachImage(ctx, "p1", "a.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNoImageStorage)

	store := &recordingImages{}
	uc := NewProductUsecase(repo, store, &fixedClock{t: t0}, seqIDs("img"))
	p, err := uc.AttachImage(ctx, "p1", "Photo.PNG", "image/png", strings.NewReader("pixels"))
	require.NoError(t, err)

	assert.Equal(t, "products/p1/img-1.png", store.path)
	assert.Equal(t, "pixels", store.body)
	assert.Equal(t, []string{"p1.jpg", "https://storage.googleapis.com/bucket/products/p1/img-1.png"}, p.Images)
}
