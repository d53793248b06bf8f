// internal/application/usecase/order_usecase.go
package usecase

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"storefront/internal/domain/common"
	orderdom "storefront/internal/domain/order"
	productdom "storefront/internal/domain/product"
	userdom "storefront/internal/domain/user"
	"storefront/internal/infra/logging"
)

var (
	ErrOrderInvalidArgument = common.NewError(common.ErrInvalidArgument, "Invalid order request")
	ErrLedgerDisabled       = common.NewError(common.ErrUnavailable, "Order reporting is not configured")
)

// OrderLine is one requested line of a direct order.
type OrderLine struct {
	ProductID string
	Quantity  int
}

// OrderUsecase reads orders and drives their status.
type OrderUsecase struct {
	orders   orderdom.Repository
	products productdom.Repository
	users    userdom.Repository
	ledger   orderdom.Ledger
	notify   NotifierPort
	clock    Clock
	newID    IDGenerator
	log      *logrus.Entry
}

// OrderDeps groups the collaborators of OrderUsecase. Ledger and Notifier may be nil.
type OrderDeps struct {
	Orders   orderdom.Repository
	Products productdom.Repository
	Users    userdom.Repository
	Ledger   orderdom.Ledger
	Notifier NotifierPort
	Clock    Clock
	IDs      IDGenerator
}

func NewOrderUsecase(d OrderDeps) *OrderUsecase {
	return &OrderUsecase{
		orders:   d.Orders,
		products: d.Products,
		users:    d.Users,
		ledger:   d.Ledger,
		notify:   notifierOrNoop(d.Notifier),
		clock:    clockOrSystem(d.Clock),
		newID:    idsOrUUID(d.IDs),
		log:      logging.For("order_uc"),
	}
}

// List returns the caller's orders; admins see everyone's.
func (uc *OrderUsecase) List(ctx context.Context, actor Actor, f orderdom.Filter, page common.Page) (common.PageResult[orderdom.Order], error) {
	if !actor.IsAdmin() {
		f.UserID = actor.UserID
	}
	items, err := uc.orders.List(ctx, f)
	if err != nil {
		return common.PageResult[orderdom.Order]{}, err
	}
	return common.Paginate(items, page), nil
}

// Get returns an order to its owner or an admin.
func (uc *OrderUsecase) Get(ctx context.Context, actor Actor, id string) (orderdom.Order, error) {
	o, err := uc.orders.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return orderdom.Order{}, err
	}
	if !actor.CanAccessOwned(o.UserID) {
		return orderdom.Order{}, userdom.ErrNotOwner
	}
	return o, nil
}

// Create places an order directly from product ids. Prices come from the live
// products and stock is decremented in the same transaction as the order write.
func (uc *OrderUsecase) Create(ctx context.Context, actor Actor, lines []OrderLine, addressID, paymentMethod string) (orderdom.Order, error) {
	if len(lines) == 0 {
		return orderdom.Order{}, orderdom.ErrInvalidItems
	}
	u, err := uc.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return orderdom.Order{}, err
	}
	addr, ok := u.Addresses.Get(strings.TrimSpace(addressID))
	if !ok {
		return orderdom.Order{}, ErrInvalidShippingAddress
	}

	items := make([]orderdom.ItemSnapshot, 0, len(lines))
	for _, ln := range mergeLines(lines) {
		if ln.Quantity <= 0 {
			return orderdom.Order{}, orderdom.ErrInvalidItems
		}
		p, err := uc.products.GetByID(ctx, ln.ProductID)
		if err != nil {
			return orderdom.Order{}, err
		}
		if !p.IsActive() {
			return orderdom.Order{}, productdom.ErrNotFound
		}
		if p.Stock < ln.Quantity {
			return orderdom.Order{}, orderdom.InsufficientStock(p.Name)
		}
		items = append(items, orderdom.ItemSnapshot{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.PrimaryImage(),
			Quantity:  ln.Quantity,
		})
	}

	o, err := orderdom.New(uc.newID(), u.ID, items, shippingSnapshot(addr), paymentMethod, uc.clock.Now())
	if err != nil {
		return orderdom.Order{}, err
	}
	if err := uc.orders.CreateWithStock(ctx, o); err != nil {
		return orderdom.Order{}, err
	}

	uc.log.Infof("[order_uc] order created order=%s user=%s", o.ID, u.ID)
	afterOrderWrite(ctx, uc.log, uc.ledger, uc.notify, &u, o)
	return o, nil
}

// UpdateStatus moves one order (admin only).
func (uc *OrderUsecase) UpdateStatus(ctx context.Context, actor Actor, id string, next orderdom.Status) (orderdom.Order, error) {
	if !actor.Can(userdom.RoleAdmin) {
		return orderdom.Order{}, userdom.ErrInsufficient
	}
	if !next.IsValid() {
		return orderdom.Order{}, orderdom.ErrInvalidStatus
	}
	o, err := uc.orders.UpdateStatus(ctx, strings.TrimSpace(id), next, uc.clock.Now())
	if err != nil {
		return orderdom.Order{}, err
	}
	afterOrderWrite(ctx, uc.log, uc.ledger, nil, nil, o)
	return o, nil
}

// BulkUpdateStatus moves every listed order or none (admin only).
func (uc *OrderUsecase) BulkUpdateStatus(ctx context.Context, actor Actor, ids []string, next orderdom.Status) ([]orderdom.Order, error) {
	if !actor.Can(userdom.RoleAdmin) {
		return nil, userdom.ErrInsufficient
	}
	ids = dedupStrings(ids)
	if len(ids) == 0 {
		return nil, ErrOrderInvalidArgument
	}
	if len(ids) > MaxBulkWrites {
		return nil, ErrTooManyIDs
	}
	if !next.IsValid() {
		return nil, orderdom.ErrInvalidStatus
	}

	updated, err := uc.orders.UpdateStatusMany(ctx, ids, next, uc.clock.Now())
	if err != nil {
		return nil, err
	}
	for _, o := range updated {
		afterOrderWrite(ctx, uc.log, uc.ledger, nil, nil, o)
	}
	uc.log.Infof("[order_uc] bulk status=%s count=%d", next, len(updated))
	return updated, nil
}

// Summary reports order counts and revenue per status from the ledger (admin only).
func (uc *OrderUsecase) Summary(ctx context.Context, actor Actor) ([]orderdom.StatusSummary, error) {
	if !actor.Can(userdom.RoleAdmin) {
		return nil, userdom.ErrInsufficient
	}
	if uc.ledger == nil {
		return nil, ErrLedgerDisabled
	}
	return uc.ledger.Summary(ctx)
}

// ----------------------------
// Helpers
// ----------------------------

func shippingSnapshot(a userdom.Address) orderdom.ShippingSnapshot {
	return orderdom.ShippingSnapshot{
		AddressID:   a.ID,
		Type:        string(a.Type),
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Street:      a.Street,
		City:        a.City,
		State:       a.State,
		ZipCode:     a.ZipCode,
		Country:     a.Country,
		PhoneNumber: a.PhoneNumber,
	}
}

// mergeLines folds duplicate product ids, keeping first-seen order.
func mergeLines(lines []OrderLine) []OrderLine {
	idx := map[string]int{}
	out := make([]OrderLine, 0, len(lines))
	for _, ln := range lines {
		pid := strings.TrimSpace(ln.ProductID)
		if i, ok := idx[pid]; ok {
			out[i].Quantity += ln.Quantity
			continue
		}
		idx[pid] = len(out)
		out = append(out, OrderLine{ProductID: pid, Quantity: ln.Quantity})
	}
	return out
}

// afterOrderWrite runs the best-effort side effects of a committed order write.
// notify / u may be nil for status changes.
func afterOrderWrite(ctx context.Context, log *logrus.Entry, ledger orderdom.Ledger, notify NotifierPort, u *userdom.User, o orderdom.Order) {
	if ledger != nil {
		if err := ledger.Record(ctx, o); err != nil {
			log.WithError(err).Warnf("ledger record failed order=%s", o.ID)
		}
	}
	if notify != nil && u != nil {
		if err := notify.OrderPlaced(ctx, *u, o); err != nil {
			log.WithError(err).Warnf("order mail failed order=%s", o.ID)
		}
	}
}
