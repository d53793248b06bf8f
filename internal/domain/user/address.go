// internal/domain/user/address.go
package user

import (
	"strings"
	"time"

	"storefront/internal/domain/common"
)

var (
	ErrAddressNotFound    = common.NewError(common.ErrNotFound, "Address not found")
	ErrInvalidAddress     = common.NewError(common.ErrInvalidArgument, "address: street, city, state, zipCode and country are required")
	ErrInvalidAddressType = common.NewError(common.ErrInvalidArgument, "address: type must be home, work or other")
)

// AddressType classifies an address.
type AddressType string

const (
	AddressHome  AddressType = "home"
	AddressWork  AddressType = "work"
	AddressOther AddressType = "other"
)

func (t AddressType) IsValid() bool {
	switch t {
	case AddressHome, AddressWork, AddressOther:
		return true
	}
	return false
}

// Address is embedded in the user document.
type Address struct {
	ID          string
	Type        AddressType
	FirstName   string
	LastName    string
	Street      string
	City        string
	State       string
	ZipCode     string
	Country     string
	PhoneNumber string
	IsDefault   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AddressFields are the user-editable parts of an address.
type AddressFields struct {
	Type        *AddressType
	FirstName   *string
	LastName    *string
	Street      *string
	City        *string
	State       *string
	ZipCode     *string
	Country     *string
	PhoneNumber *string
}

func (a *Address) apply(f AddressFields) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	if f.Type != nil {
		a.Type = *f.Type
	}
	set(&a.FirstName, f.FirstName)
	set(&a.LastName, f.LastName)
	set(&a.Street, f.Street)
	set(&a.City, f.City)
	set(&a.State, f.State)
	set(&a.ZipCode, f.ZipCode)
	set(&a.Country, f.Country)
	set(&a.PhoneNumber, f.PhoneNumber)
}

func (a Address) validate() error {
	if !a.Type.IsValid() {
		return ErrInvalidAddressType
	}
	if a.Street == "" || a.City == "" || a.State == "" || a.ZipCode == "" || a.Country == "" {
		return ErrInvalidAddress
	}
	return nil
}

// AddressBook is the ordered address list of a user.
//
// Invariant: a non-empty book has exactly one default entry, an empty one has none.
// Every mutation below keeps it, so handlers never touch IsDefault directly.
type AddressBook []Address

// Get returns a copy of the address with id.
func (b AddressBook) Get(id string) (Address, bool) {
	for _, a := range b {
		if a.ID == id {
			return a, true
		}
	}
	return Address{}, false
}

// Default returns the default address, if any.
func (b AddressBook) Default() (Address, bool) {
	for _, a := range b {
		if a.IsDefault {
			return a, true
		}
	}
	return Address{}, false
}

// Add appends a new address. The first address always becomes the default;
// otherwise makeDefault moves the default flag to the new entry.
func (b AddressBook) Add(id string, f AddressFields, makeDefault bool, now time.Time) (AddressBook, Address, error) {
	a := Address{ID: strings.TrimSpace(id), Type: AddressHome, CreatedAt: now, UpdatedAt: now}
	a.apply(f)
	if err := a.validate(); err != nil {
		return b, Address{}, err
	}

	out := b.clone()
	if len(out) == 0 || makeDefault {
		out = out.clearDefault()
		a.IsDefault = true
	}
	out = append(out, a)
	return out, a, nil
}

// Update edits an address. makeDefault=true moves the default flag to it;
// a default cannot be unset directly, only moved.
func (b AddressBook) Update(id string, f AddressFields, makeDefault bool, now time.Time) (AddressBook, Address, error) {
	idx := b.index(id)
	if idx < 0 {
		return b, Address{}, ErrAddressNotFound
	}

	out := b.clone()
	a := out[idx]
	a.apply(f)
	if err := a.validate(); err != nil {
		return b, Address{}, err
	}
	a.UpdatedAt = now
	out[idx] = a

	if makeDefault {
		return out.SetDefault(id, now)
	}
	return out, a, nil
}

// Remove deletes an address. Removing the default promotes the first remaining entry.
func (b AddressBook) Remove(id string, now time.Time) (AddressBook, error) {
	idx := b.index(id)
	if idx < 0 {
		return b, ErrAddressNotFound
	}

	wasDefault := b[idx].IsDefault
	out := make(AddressBook, 0, len(b)-1)
	out = append(out, b[:idx]...)
	out = append(out, b[idx+1:]...)

	if wasDefault && len(out) > 0 {
		out[0].IsDefault = true
		out[0].UpdatedAt = now
	}
	return out, nil
}

// SetDefault makes id the only default address.
func (b AddressBook) SetDefault(id string, now time.Time) (AddressBook, Address, error) {
	idx := b.index(id)
	if idx < 0 {
		return b, Address{}, ErrAddressNotFound
	}

	out := b.clone().clearDefault()
	out[idx].IsDefault = true
	out[idx].UpdatedAt = now
	return out, out[idx], nil
}

func (b AddressBook) index(id string) int {
	for i := range b {
		if b[i].ID == id {
			return i
		}
	}
	return -1
}

func (b AddressBook) clone() AddressBook {
	out := make(AddressBook, len(b))
	copy(out, b)
	return out
}

func (b AddressBook) clearDefault() AddressBook {
	for i := range b {
		b[i].IsDefault = false
	}
	return b
}
