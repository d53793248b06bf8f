// internal/domain/order/entity.go
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/common"
)

// ========================================
// Snapshot structs (stored in Order)
// ========================================

// ShippingSnapshot is a frozen copy of the chosen address.
// Later edits to the user's address book never reach existing orders.
type ShippingSnapshot struct {
	AddressID   string
	Type        string
	FirstName   string
	LastName    string
	Street      string
	City        string
	State       string
	ZipCode     string
	Country     string
	PhoneNumber string
}

// ItemSnapshot is one order line with the price frozen at order time.
type ItemSnapshot struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Image     string
	Quantity  int
}

// ========================================
// Status
// ========================================

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// progression order of the forward chain
var rank = map[Status]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
}

func (s Status) IsValid() bool {
	_, ok := rank[s]
	return ok || s == StatusCancelled
}

// IsTerminal reports delivered / cancelled.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether from -> to is allowed:
// forward along pending→processing→shipped→delivered (skips allowed),
// cancelled only before shipping, same status is a no-op.
func CanTransition(from, to Status) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if from == to {
		return true
	}
	if from.IsTerminal() {
		return false
	}
	if to == StatusCancelled {
		return from == StatusPending || from == StatusProcessing
	}
	return rank[to] > rank[from]
}

// ========================================
// Entity
// ========================================

type Order struct {
	ID              string
	UserID          string
	Items           []ItemSnapshot
	Total           decimal.Decimal
	ShippingAddress ShippingSnapshot
	PaymentMethod   string
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ========================================
// Errors
// ========================================

var (
	ErrNotFound          = common.NewError(common.ErrNotFound, "Order not found")
	ErrInvalidID         = common.NewError(common.ErrInvalidArgument, "order: invalid id")
	ErrInvalidUserID     = common.NewError(common.ErrInvalidArgument, "order: invalid userId")
	ErrInvalidItems      = common.NewError(common.ErrInvalidArgument, "order: at least one valid item is required")
	ErrInvalidPayment    = common.NewError(common.ErrInvalidArgument, "order: paymentMethod is required")
	ErrInvalidStatus     = common.NewError(common.ErrInvalidArgument, "order: invalid status")
	ErrInvalidTransition = common.NewError(common.ErrInvalidState, "Invalid status transition")
)

// InsufficientStock builds the error for a line that cannot be fulfilled.
func InsufficientStock(productName string) error {
	return common.NewError(common.ErrInvalidState, fmt.Sprintf("Insufficient stock for %s", productName))
}

// ========================================
// Policy
// ========================================

var (
	MinItemsRequired = 1
)

// ========================================
// Constructors
// ========================================

// New builds a pending order. Items and address are deep-copied.
func New(
	id string,
	userID string,
	items []ItemSnapshot,
	shipping ShippingSnapshot,
	paymentMethod string,
	now time.Time,
) (Order, error) {
	o := Order{
		ID:              strings.TrimSpace(id),
		UserID:          strings.TrimSpace(userID),
		Items:           cloneItems(items),
		ShippingAddress: shipping,
		PaymentMethod:   strings.TrimSpace(paymentMethod),
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	o.Total = ComputeTotal(o.Items)
	if err := o.validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

// TransitionTo moves the order to next, refreshing UpdatedAt.
func (o *Order) TransitionTo(next Status, now time.Time) error {
	if !next.IsValid() {
		return ErrInvalidStatus
	}
	if !CanTransition(o.Status, next) {
		return ErrInvalidTransition
	}
	o.Status = next
	o.UpdatedAt = now
	return nil
}

// ComputeTotal is Σ price × quantity, rounded to cents.
func ComputeTotal(items []ItemSnapshot) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum.Round(2)
}

func (o Order) validate() error {
	if o.ID == "" {
		return ErrInvalidID
	}
	if o.UserID == "" {
		return ErrInvalidUserID
	}
	if len(o.Items) < MinItemsRequired {
		return ErrInvalidItems
	}
	for _, it := range o.Items {
		if strings.TrimSpace(it.ProductID) == "" || it.Quantity <= 0 || it.Price.IsNegative() {
			return ErrInvalidItems
		}
	}
	if o.PaymentMethod == "" {
		return ErrInvalidPayment
	}
	if !o.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

func cloneItems(src []ItemSnapshot) []ItemSnapshot {
	out := make([]ItemSnapshot, len(src))
	copy(out, src)
	return out
}
