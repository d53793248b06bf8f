// internal/adapters/out/firestore/user_repository_fs.go
package firestore

import (
	"context"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	userdom "storefront/internal/domain/user"
)

// =====================================================
// Firestore User Repository
// =====================================================
//
// IMPORTANT:
// - users コレクションの DocID は Firebase Auth UID に統一する。
// - addresses は user ドキュメントに埋め込み配列として保存する。
// =====================================================

type UserRepositoryFS struct {
	Client *firestore.Client
}

var _ userdom.Repository = (*UserRepositoryFS)(nil)

func NewUserRepositoryFS(client *firestore.Client) *UserRepositoryFS {
	return &UserRepositoryFS{Client: client}
}

func (r *UserRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(colUsers)
}

func (r *UserRepositoryFS) GetByID(ctx context.Context, id string) (userdom.User, error) {
	if r.Client == nil {
		return userdom.User{}, errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return userdom.User{}, userdom.ErrInvalidID
	}
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return userdom.User{}, mapReadErr(err, userdom.ErrNotFound)
	}
	return docToUser(snap)
}

// GetByEmail looks across active and inactive users; emails are stored normalized.
func (r *UserRepositoryFS) GetByEmail(ctx context.Context, email string) (userdom.User, error) {
	if r.Client == nil {
		return userdom.User{}, errNilClient
	}
	email = userdom.NormalizeEmail(email)
	if email == "" {
		return userdom.User{}, userdom.ErrNotFound
	}
	users, err := collect(ctx, r.col().Where("email", "==", email).Limit(1), docToUser)
	if err != nil {
		return userdom.User{}, err
	}
	if len(users) == 0 {
		return userdom.User{}, userdom.ErrNotFound
	}
	return users[0], nil
}

func (r *UserRepositoryFS) List(ctx context.Context, f userdom.Filter) ([]userdom.User, error) {
	if r.Client == nil {
		return nil, errNilClient
	}
	q := r.col().Query
	if f.Role != "" {
		q = q.Where("role", "==", string(f.Role))
	}
	if f.Active != nil {
		q = q.Where("isActive", "==", *f.Active)
	}
	users, err := collect(ctx, q, docToUser)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

// Create uses the uid as docId; an existing document is a conflict.
func (r *UserRepositoryFS) Create(ctx context.Context, u userdom.User) (userdom.User, error) {
	if r.Client == nil {
		return userdom.User{}, errNilClient
	}
	id := strings.TrimSpace(u.ID)
	if id == "" {
		return userdom.User{}, userdom.ErrInvalidID
	}
	if _, err := r.col().Doc(id).Create(ctx, userToDoc(u)); err != nil {
		return userdom.User{}, mapCreateErr(err, userdom.ErrEmailTaken)
	}
	return u, nil
}

func (r *UserRepositoryFS) Save(ctx context.Context, u userdom.User) (userdom.User, error) {
	if r.Client == nil {
		return userdom.User{}, errNilClient
	}
	id := strings.TrimSpace(u.ID)
	if id == "" {
		return userdom.User{}, userdom.ErrInvalidID
	}
	if _, err := r.col().Doc(id).Set(ctx, userToDoc(u)); err != nil {
		return userdom.User{}, err
	}
	return u, nil
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type userDoc struct {
	Email       string              `firestore:"email"`
	FirstName   string              `firestore:"firstName"`
	LastName    string              `firestore:"lastName"`
	PhoneNumber string              `firestore:"phoneNumber,omitempty"`
	Role        string              `firestore:"role"`
	Addresses   []addressDoc        `firestore:"addresses"`
	IsActive    bool                `firestore:"isActive"`
	Preferences userdom.Preferences `firestore:"preferences"`
	CreatedAt   time.Time           `firestore:"createdAt"`
	UpdatedAt   time.Time           `firestore:"updatedAt"`
}

type addressDoc struct {
	ID          string    `firestore:"id"`
	Type        string    `firestore:"type"`
	FirstName   string    `firestore:"firstName"`
	LastName    string    `firestore:"lastName"`
	Street      string    `firestore:"street"`
	City        string    `firestore:"city"`
	State       string    `firestore:"state"`
	ZipCode     string    `firestore:"zipCode"`
	Country     string    `firestore:"country"`
	PhoneNumber string    `firestore:"phoneNumber,omitempty"`
	IsDefault   bool      `firestore:"isDefault"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

func userToDoc(u userdom.User) userDoc {
	addrs := make([]addressDoc, 0, len(u.Addresses))
	for _, a := range u.Addresses {
		addrs = append(addrs, addressDoc{
			ID:          a.ID,
			Type:        string(a.Type),
			FirstName:   a.FirstName,
			LastName:    a.LastName,
			Street:      a.Street,
			City:        a.City,
			State:       a.State,
			ZipCode:     a.ZipCode,
			Country:     a.Country,
			PhoneNumber: a.PhoneNumber,
			IsDefault:   a.IsDefault,
			CreatedAt:   a.CreatedAt.UTC(),
			UpdatedAt:   a.UpdatedAt.UTC(),
		})
	}
	return userDoc{
		Email:       userdom.NormalizeEmail(u.Email),
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		Role:        string(u.Role),
		Addresses:   addrs,
		IsActive:    u.IsActive,
		Preferences: u.Preferences,
		CreatedAt:   u.CreatedAt.UTC(),
		UpdatedAt:   u.UpdatedAt.UTC(),
	}
}

func docToUser(snap *firestore.DocumentSnapshot) (userdom.User, error) {
	var d userDoc
	if err := snap.DataTo(&d); err != nil {
		return userdom.User{}, err
	}
	book := make(userdom.AddressBook, 0, len(d.Addresses))
	for _, a := range d.Addresses {
		book = append(book, userdom.Address{
			ID:          a.ID,
			Type:        userdom.AddressType(a.Type),
			FirstName:   a.FirstName,
			LastName:    a.LastName,
			Street:      a.Street,
			City:        a.City,
			State:       a.State,
			ZipCode:     a.ZipCode,
			Country:     a.Country,
			PhoneNumber: a.PhoneNumber,
			IsDefault:   a.IsDefault,
			CreatedAt:   a.CreatedAt.UTC(),
			UpdatedAt:   a.UpdatedAt.UTC(),
		})
	}
	return userdom.User{
		ID:          snap.Ref.ID,
		Email:       d.Email,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		PhoneNumber: d.PhoneNumber,
		Role:        userdom.Role(d.Role),
		Addresses:   book,
		IsActive:    d.IsActive,
		Preferences: d.Preferences,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}, nil
}
