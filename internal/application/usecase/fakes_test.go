package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	cartdom "storefront/internal/domain/cart"
	catdom "storefront/internal/domain/category"
	"storefront/internal/domain/common"
	orderdom "storefront/internal/domain/order"
	productdom "storefront/internal/domain/product"
	userdom "storefront/internal/domain/user"
)

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var t0 = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func seqIDs(prefix string) IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// ------------------------------------------------------------
// products
// ------------------------------------------------------------

type memProducts struct {
	mu   sync.Mutex
	byID map[string]productdom.Product
	ord  []string
}

func newMemProducts(ps ...productdom.Product) *memProducts {
	m := &memProducts{byID: map[string]productdom.Product{}}
	for _, p := range ps {
		m.put(p)
	}
	return m
}

func (m *memProducts) put(p productdom.Product) {
	if _, ok := m.byID[p.ID]; !ok {
		m.ord = append(m.ord, p.ID)
	}
	m.byID[p.ID] = p
}

func (m *memProducts) GetByID(_ context.Context, id string) (productdom.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}

func (m *memProducts) List(_ context.Context, f productdom.Filter) ([]productdom.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []productdom.Product{}
	for _, id := range m.ord {
		p := m.byID[id]
		if !f.Matches(p) {
			continue
		}
		out = append(out, p)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (m *memProducts) Create(_ context.Context, p productdom.Product) (productdom.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(p)
	return p, nil
}

func (m *memProducts) Save(_ context.Context, p productdom.Product) (productdom.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[p.ID]; !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	m.put(p)
	return p, nil
}

func (m *memProducts) UpdateMany(_ context.Context, ids []string, pt productdom.Patch, now time.Time) ([]productdom.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	staged := make([]productdom.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := m.byID[id]
		if !ok {
			return nil, productdom.ErrNotFound
		}
		if err := p.Apply(pt, now); err != nil {
			return nil, err
		}
		staged = append(staged, p)
	}
	for _, p := range staged {
		m.put(p)
	}
	return staged, nil
}

func (m *memProducts) CountActiveByCategory(ctx context.Context, category string) (int, error) {
	items, _ := m.List(ctx, productdom.Filter{Category: category})
	return len(items), nil
}

func product(id, category string, price string, stock int) productdom.Product {
	return productdom.Product{
		ID:        id,
		Name:      "Product " + id,
		Price:     decimal.RequireFromString(price),
		Category:  category,
		Brand:     "acme",
		Stock:     stock,
		Images:    []string{id + ".jpg"},
		Lifecycle: common.Active,
		Tags:      []string{},
		CreatedAt: t0,
		UpdatedAt: t0,
	}
}

// ------------------------------------------------------------
// categories
// ------------------------------------------------------------

type memCategories struct {
	byID map[string]catdom.Category
}

func newMemCategories(cs ...catdom.Category) *memCategories {
	m := &memCategories{byID: map[string]catdom.Category{}}
	for _, c := range cs {
		m.byID[c.ID] = c
	}
	return m
}

func (m *memCategories) GetByID(_ context.Context, id string) (catdom.Category, error) {
	c, ok := m.byID[id]
	if !ok {
		return catdom.Category{}, catdom.ErrNotFound
	}
	return c, nil
}

func (m *memCategories) List(_ context.Context, includeInactive bool) ([]catdom.Category, error) {
	out := []catdom.Category{}
	for _, c := range m.byID {
		if includeInactive || c.Lifecycle.IsActive() {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memCategories) Create(_ context.Context, c catdom.Category) (catdom.Category, error) {
	m.byID[c.ID] = c
	return c, nil
}

func (m *memCategories) Save(_ context.Context, c catdom.Category) (catdom.Category, error) {
	m.byID[c.ID] = c
	return c, nil
}

// ------------------------------------------------------------
// users
// ------------------------------------------------------------

type memUsers struct {
	mu         sync.Mutex
	byID       map[string]userdom.User
	failCreate error
}

func newMemUsers(us ...userdom.User) *memUsers {
	m := &memUsers{byID: map[string]userdom.User{}}
	for _, u := range us {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) GetByID(_ context.Context, id string) (userdom.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return userdom.User{}, userdom.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (userdom.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return userdom.User{}, userdom.ErrNotFound
}

func (m *memUsers) List(_ context.Context, f userdom.Filter) ([]userdom.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []userdom.User{}
	for _, u := range m.byID {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Active != nil && u.IsActive != *f.Active {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) Create(_ context.Context, u userdom.User) (userdom.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return userdom.User{}, m.failCreate
	}
	if _, ok := m.byID[u.ID]; ok {
		return userdom.User{}, userdom.ErrEmailTaken
	}
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) Save(_ context.Context, u userdom.User) (userdom.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[u.ID] = u
	return u, nil
}

func customer(id string) userdom.User {
	u, err := userdom.New(id, id+"@example.com", "First", "Last", "", userdom.RoleCustomer, t0)
	if err != nil {
		panic(err)
	}
	return u
}

// ------------------------------------------------------------
// carts + orders (shared so CreateFromCart can delete the cart)
// ------------------------------------------------------------

type memCarts struct {
	mu     sync.Mutex
	byUser map[string]*cartdom.Cart
}

func newMemCarts() *memCarts { return &memCarts{byUser: map[string]*cartdom.Cart{}} }

func (m *memCarts) GetByUserID(_ context.Context, userID string) (*cartdom.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byUser[userID]
	if !ok {
		return nil, nil
	}
	cp := *c
	cp.Items = append([]cartdom.CartItem{}, c.Items...)
	return &cp, nil
}

func (m *memCarts) Upsert(_ context.Context, c *cartdom.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	cp.Items = append([]cartdom.CartItem{}, c.Items...)
	m.byUser[c.UserID] = &cp
	return nil
}

func (m *memCarts) DeleteByUserID(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byUser, userID)
	return nil
}

type memOrders struct {
	mu       sync.Mutex
	byID     map[string]orderdom.Order
	carts    *memCarts
	products *memProducts
	failNext error

	// runs before the cart is read, standing in for a concurrent writer
	beforeCheckout func()
}

func newMemOrders(carts *memCarts, products *memProducts) *memOrders {
	return &memOrders{byID: map[string]orderdom.Order{}, carts: carts, products: products}
}

func (m *memOrders) GetByID(_ context.Context, id string) (orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	return o, nil
}

func (m *memOrders) List(_ context.Context, f orderdom.Filter) ([]orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []orderdom.Order{}
	for _, o := range m.byID {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memOrders) CreateFromCart(ctx context.Context, userID string, build orderdom.CheckoutBuilder) (orderdom.Order, error) {
	if m.beforeCheckout != nil {
		m.beforeCheckout()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return orderdom.Order{}, err
	}
	c, err := m.carts.GetByUserID(ctx, userID)
	if err != nil {
		return orderdom.Order{}, err
	}
	o, err := build(c)
	if err != nil {
		return orderdom.Order{}, err
	}
	m.byID[o.ID] = o
	return o, m.carts.DeleteByUserID(ctx, userID)
}

func (m *memOrders) CreateWithStock(_ context.Context, o orderdom.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products.mu.Lock()
	defer m.products.mu.Unlock()

	staged := map[string]productdom.Product{}
	for _, it := range o.Items {
		p, ok := m.products.byID[it.ProductID]
		if !ok {
			return productdom.ErrNotFound
		}
		if p.Stock < it.Quantity {
			return orderdom.InsufficientStock(p.Name)
		}
		p.Stock -= it.Quantity
		staged[p.ID] = p
	}
	for _, p := range staged {
		m.products.put(p)
	}
	m.byID[o.ID] = o
	return nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id string, next orderdom.Status, now time.Time) (orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	if err := o.TransitionTo(next, now); err != nil {
		return orderdom.Order{}, err
	}
	m.byID[id] = o
	return o, nil
}

func (m *memOrders) UpdateStatusMany(_ context.Context, ids []string, next orderdom.Status, now time.Time) ([]orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	staged := make([]orderdom.Order, 0, len(ids))
	for _, id := range ids {
		o, ok := m.byID[id]
		if !ok {
			return nil, orderdom.ErrNotFound
		}
		if err := o.TransitionTo(next, now); err != nil {
			return nil, err
		}
		staged = append(staged, o)
	}
	for _, o := range staged {
		m.byID[o.ID] = o
	}
	return staged, nil
}

type memLedger struct {
	recorded []orderdom.Order
}

func (l *memLedger) Record(_ context.Context, o orderdom.Order) error {
	l.recorded = append(l.recorded, o)
	return nil
}

func (l *memLedger) Summary(context.Context) ([]orderdom.StatusSummary, error) {
	return []orderdom.StatusSummary{{Status: orderdom.StatusPending, Orders: len(l.recorded)}}, nil
}

// ------------------------------------------------------------
// identity + mail
// ------------------------------------------------------------

type fakeIdentity struct {
	emails    map[string]string // email -> uid
	passwords map[string]string // uid -> password
	disabled  map[string]bool
	revoked   []string
	deleted   []string
	failDel   error
	next      int
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{emails: map[string]string{}, passwords: map[string]string{}, disabled: map[string]bool{}}
}

func (f *fakeIdentity) CreateUser(_ context.Context, in NewIdentity) (string, error) {
	if _, ok := f.emails[in.Email]; ok {
		return "", fmt.Errorf("auth/email-already-exists: %w", ErrIdentityEmailExists)
	}
	f.next++
	uid := fmt.Sprintf("uid-%d", f.next)
	f.emails[in.Email] = uid
	f.passwords[uid] = in.Password
	return uid, nil
}

func (f *fakeIdentity) CustomToken(_ context.Context, uid string) (string, error) {
	return "custom-" + uid, nil
}

func (f *fakeIdentity) UpdatePassword(_ context.Context, uid, password string) error {
	f.passwords[uid] = password
	return nil
}

func (f *fakeIdentity) SetDisabled(_ context.Context, uid string, disabled bool) error {
	f.disabled[uid] = disabled
	return nil
}

func (f *fakeIdentity) RevokeSessions(_ context.Context, uid string) error {
	f.revoked = append(f.revoked, uid)
	return nil
}

func (f *fakeIdentity) DeleteUser(_ context.Context, uid string) error {
	if f.failDel != nil {
		return f.failDel
	}
	for email, id := range f.emails {
		if id == uid {
			delete(f.emails, email)
		}
	}
	delete(f.passwords, uid)
	f.deleted = append(f.deleted, uid)
	return nil
}

// VerifyPassword lets fakeIdentity double as the password verifier.
func (f *fakeIdentity) VerifyPassword(_ context.Context, email, password string) (string, error) {
	uid, ok := f.emails[email]
	if !ok || f.passwords[uid] != password {
		return "", ErrInvalidCredentials
	}
	return "id-token-" + uid, nil
}

type recordingNotifier struct {
	welcomed []string
	placed   []string
}

func (n *recordingNotifier) Welcome(_ context.Context, u userdom.User) error {
	n.welcomed = append(n.welcomed, u.Email)
	return nil
}

func (n *recordingNotifier) OrderPlaced(_ context.Context, _ userdom.User, o orderdom.Order) error {
	n.placed = append(n.placed, o.ID)
	return nil
}

var (
	adminActor = Actor{UserID: "admin-1", Role: userdom.RoleAdmin}
)

func actorFor(id string) Actor { return Actor{UserID: id, Role: userdom.RoleCustomer} }
