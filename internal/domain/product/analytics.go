package product

import (
	"sort"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the upper bound (inclusive) of the "low stock" band.
const LowStockThreshold = 10

// NamedCount is one row of a top-N breakdown.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Analytics is the admin inventory overview.
type Analytics struct {
	TotalProducts       int
	ActiveProducts      int
	InactiveProducts    int
	FeaturedProducts    int
	OutOfStockProducts  int
	LowStockProducts    int
	TotalInventoryValue decimal.Decimal
	AveragePrice        decimal.Decimal
	CategoriesCount     int
	BrandsCount         int
	TopCategories       []NamedCount
	TopBrands           []NamedCount
}

// Analyze computes the overview over every product, active or not.
// Inventory value and average price only count active products.
func Analyze(items []Product) Analytics {
	a := Analytics{
		TotalProducts:       len(items),
		TotalInventoryValue: decimal.Zero,
		AveragePrice:        decimal.Zero,
	}

	categories := map[string]int{}
	brands := map[string]int{}
	priceSum := decimal.Zero

	for _, p := range items {
		if p.IsActive() {
			a.ActiveProducts++
			a.TotalInventoryValue = a.TotalInventoryValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
			priceSum = priceSum.Add(p.Price)
		} else {
			a.InactiveProducts++
		}
		if p.IsFeatured {
			a.FeaturedProducts++
		}
		switch {
		case p.Stock == 0:
			a.OutOfStockProducts++
		case p.Stock <= LowStockThreshold:
			a.LowStockProducts++
		}
		categories[p.Category]++
		brands[p.Brand]++
	}

	if a.ActiveProducts > 0 {
		a.AveragePrice = priceSum.Div(decimal.NewFromInt(int64(a.ActiveProducts))).Round(2)
	}
	a.TotalInventoryValue = a.TotalInventoryValue.Round(2)
	a.CategoriesCount = len(categories)
	a.BrandsCount = len(brands)
	a.TopCategories = topN(categories, 5)
	a.TopBrands = topN(brands, 5)
	return a
}

// topN orders by count desc, then name asc so the output is deterministic.
func topN(m map[string]int, n int) []NamedCount {
	out := make([]NamedCount, 0, len(m))
	for k, v := range m {
		out = append(out, NamedCount{Name: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
