// internal/domain/cart/entity.go
package cart

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/common"
)

var (
	ErrInvalidCart     = common.NewError(common.ErrInvalidArgument, "cart: invalid")
	ErrInvalidQuantity = common.NewError(common.ErrInvalidArgument, "cart: quantity must be a positive integer")
	ErrItemNotFound    = common.NewError(common.ErrNotFound, "Item not found in cart")
	ErrEmpty           = common.NewError(common.ErrInvalidState, "Cart is empty")
)

// DefaultCartTTL is the inactivity window after which the cart becomes eligible for auto deletion
// (Firestore TTL should be configured on expiresAt).
const DefaultCartTTL = 30 * 24 * time.Hour

// CartItem represents "one line item" in a cart.
// Name / Price / Image are snapshots taken when the product was first added.
type CartItem struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Image     string
	Quantity  int
}

// LineTotal is price × quantity.
func (it CartItem) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Cart represents "a cart document".
//   - docId = userId (Firestore)
//   - Items keep insertion order; one line per productId
//   - Total is derived from Items and recomputed on every mutation
type Cart struct {
	UserID string
	Items  []CartItem
	Total  decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}

// NewCart creates an empty cart doc for the user.
func NewCart(userID string, now time.Time) (*Cart, error) {
	c := &Cart{
		UserID:    strings.TrimSpace(userID),
		Items:     []CartItem{},
		Total:     decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(DefaultCartTTL),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Add increases the quantity of productId, or appends a new line with the given snapshot.
// qty must be >= 1.
func (c *Cart) Add(snap CartItem, qty int, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	pid := strings.TrimSpace(snap.ProductID)
	if pid == "" {
		return ErrInvalidCart
	}
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	if idx := findItemIndex(c.Items, pid); idx >= 0 {
		c.Items[idx].Quantity += qty
	} else {
		snap.ProductID = pid
		snap.Quantity = qty
		c.Items = append(c.Items, snap)
	}

	c.touch(now)
	return c.validate()
}

// SetQty sets quantity for productId. qty == 0 removes the line;
// an absent line is ErrItemNotFound.
func (c *Cart) SetQty(productID string, qty int, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	if qty < 0 {
		return ErrInvalidQuantity
	}

	idx := findItemIndex(c.Items, strings.TrimSpace(productID))
	if idx < 0 {
		return ErrItemNotFound
	}

	if qty == 0 {
		c.Items = removeIndex(c.Items, idx)
	} else {
		c.Items[idx].Quantity = qty
	}

	c.touch(now)
	return c.validate()
}

// Remove removes productId from the cart. Removing an absent line is a no-op.
func (c *Cart) Remove(productID string, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	if idx := findItemIndex(c.Items, strings.TrimSpace(productID)); idx >= 0 {
		c.Items = removeIndex(c.Items, idx)
	}
	c.touch(now)
	return c.validate()
}

// Clear empties the cart.
func (c *Cart) Clear(now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	c.Items = []CartItem{}
	c.touch(now)
	return c.validate()
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Snapshot returns a deep copy of the lines for order creation.
//
// 想定ユースケース:
// 1) Snapshot() を元に order を作成
// 2) 同トランザクション内で cart ドキュメントを削除
func (c *Cart) Snapshot() ([]CartItem, error) {
	if c.IsEmpty() {
		return nil, ErrEmpty
	}
	return cloneItems(c.Items), nil
}

// ComputeTotal is Σ price × quantity, rounded to cents.
func ComputeTotal(items []CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum.Round(2)
}

func (c *Cart) touch(now time.Time) {
	c.UpdatedAt = now
	c.ExpiresAt = now.Add(DefaultCartTTL)
}

func (c *Cart) validate() error {
	if c == nil {
		return ErrInvalidCart
	}

	// ✅ docId (= userId) must exist
	if c.UserID == "" {
		return ErrInvalidCart
	}
	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() || c.UpdatedAt.Before(c.CreatedAt) {
		return ErrInvalidCart
	}

	if c.Items == nil {
		c.Items = []CartItem{}
	}
	for _, it := range c.Items {
		if it.ProductID == "" || it.Quantity <= 0 || it.Price.IsNegative() {
			return ErrInvalidCart
		}
	}

	// total is never stored independently of lines
	c.Total = ComputeTotal(c.Items)
	return nil
}

// ----------------------------
// Helpers
// ----------------------------

func findItemIndex(items []CartItem, pid string) int {
	for i := range items {
		if items[i].ProductID == pid {
			return i
		}
	}
	return -1
}

func removeIndex(items []CartItem, idx int) []CartItem {
	if idx < 0 || idx >= len(items) {
		return items
	}
	// preserve order
	return append(items[:idx], items[idx+1:]...)
}

func cloneItems(src []CartItem) []CartItem {
	cp := make([]CartItem, len(src))
	copy(cp, src)
	return cp
}
