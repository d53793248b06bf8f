package product

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/common"
)

func validInput() NewInput {
	return NewInput{
		Name:     "  Laptop ",
		Price:    decimal.NewFromFloat(999.99),
		Category: "electronics",
		Brand:    "acme",
		Stock:    3,
		Images:   []string{"a.jpg", " "},
	}
}

func TestNew(t *testing.T) {
	p, err := New("p1", validInput(), base)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", p.Name)
	assert.Equal(t, []string{"a.jpg"}, p.Images)
	assert.NotNil(t, p.Tags)
	assert.True(t, p.IsActive())

	in := validInput()
	in.Price = decimal.NewFromInt(-1)
	_, err = New("p1", in, base)
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))

	in = validInput()
	in.Images = nil
	_, err = New("p1", in, base)
	assert.ErrorIs(t, err, ErrInvalidImages)
}

func TestAdjustStock(t *testing.T) {
	p, err := New("p1", validInput(), base)
	require.NoError(t, err)

	prev, next, err := p.AdjustStock(StockAdd, 4, base)
	require.NoError(t, err)
	assert.Equal(t, 3, prev)
	assert.Equal(t, 7, next)

	_, next, err = p.AdjustStock(StockSubtract, 100, base)
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	_, next, err = p.AdjustStock(StockSet, 12, base)
	require.NoError(t, err)
	assert.Equal(t, 12, next)

	_, _, err = p.AdjustStock("multiply", 2, base)
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestApplyPatch(t *testing.T) {
	p, err := New("p1", validInput(), base)
	require.NoError(t, err)

	off := false
	name := "Laptop Pro"
	require.NoError(t, p.Apply(Patch{Name: &name, IsActive: &off}, base))
	assert.Equal(t, "Laptop Pro", p.Name)
	assert.Equal(t, common.Inactive, p.Lifecycle)

	blank := ""
	assert.ErrorIs(t, p.Apply(Patch{Brand: &blank}, base), ErrInvalidBrand)
}

func TestAnalyze(t *testing.T) {
	items := catalog()
	items[0].IsFeatured = true

	a := Analyze(items)
	assert.Equal(t, 5, a.TotalProducts)
	assert.Equal(t, 4, a.ActiveProducts)
	assert.Equal(t, 1, a.InactiveProducts)
	assert.Equal(t, 1, a.FeaturedProducts)
	assert.Equal(t, 1, a.OutOfStockProducts)
	assert.Equal(t, 3, a.LowStockProducts)
	// 100*5 + 250*0 + 40*12 + 60*7
	assert.True(t, decimal.NewFromInt(1400).Equal(a.TotalInventoryValue))
	assert.True(t, decimal.NewFromFloat(112.5).Equal(a.AveragePrice))
	assert.Equal(t, NamedCount{Name: "electronics", Count: 4}, a.TopCategories[0])
	assert.Equal(t, 2, a.CategoriesCount)
}
