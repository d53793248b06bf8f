// internal/application/usecase/address_usecase.go
package usecase

import (
	"context"
	"strings"

	userdom "storefront/internal/domain/user"
)

// AddressUsecase edits the address book embedded in the caller's user document.
// Every mutation is a read-modify-write of that document.
type AddressUsecase struct {
	users userdom.Repository
	clock Clock
	newID IDGenerator
}

func NewAddressUsecase(users userdom.Repository, clock Clock, ids IDGenerator) *AddressUsecase {
	return &AddressUsecase{users: users, clock: clockOrSystem(clock), newID: idsOrUUID(ids)}
}

func (uc *AddressUsecase) List(ctx context.Context, actor Actor) ([]userdom.Address, error) {
	u, err := uc.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if u.Addresses == nil {
		return []userdom.Address{}, nil
	}
	return u.Addresses, nil
}

func (uc *AddressUsecase) Get(ctx context.Context, actor Actor, id string) (userdom.Address, error) {
	u, err := uc.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return userdom.Address{}, err
	}
	a, ok := u.Addresses.Get(strings.TrimSpace(id))
	if !ok {
		return userdom.Address{}, userdom.ErrAddressNotFound
	}
	return a, nil
}

func (uc *AddressUsecase) Create(ctx context.Context, actor Actor, f userdom.AddressFields, makeDefault bool) (userdom.Address, error) {
	var created userdom.Address
	err := uc.mutate(ctx, actor, func(b userdom.AddressBook) (userdom.AddressBook, error) {
		nb, a, err := b.Add(uc.newID(), f, makeDefault, uc.clock.Now())
		created = a
		return nb, err
	})
	return created, err
}

func (uc *AddressUsecase) Update(ctx context.Context, actor Actor, id string, f userdom.AddressFields, makeDefault bool) (userdom.Address, error) {
	var updated userdom.Address
	err := uc.mutate(ctx, actor, func(b userdom.AddressBook) (userdom.AddressBook, error) {
		nb, a, err := b.Update(strings.TrimSpace(id), f, makeDefault, uc.clock.Now())
		updated = a
		return nb, err
	})
	return updated, err
}

func (uc *AddressUsecase) Delete(ctx context.Context, actor Actor, id string) error {
	return uc.mutate(ctx, actor, func(b userdom.AddressBook) (userdom.AddressBook, error) {
		return b.Remove(strings.TrimSpace(id), uc.clock.Now())
	})
}

func (uc *AddressUsecase) SetDefault(ctx context.Context, actor Actor, id string) (userdom.Address, error) {
	var def userdom.Address
	err := uc.mutate(ctx, actor, func(b userdom.AddressBook) (userdom.AddressBook, error) {
		nb, a, err := b.SetDefault(strings.TrimSpace(id), uc.clock.Now())
		def = a
		return nb, err
	})
	return def, err
}

func (uc *AddressUsecase) mutate(ctx context.Context, actor Actor, fn func(userdom.AddressBook) (userdom.AddressBook, error)) error {
	u, err := uc.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	book, err := fn(u.Addresses)
	if err != nil {
		return err
	}
	u.Addresses = book
	u.UpdatedAt = uc.clock.Now()
	_, err = uc.users.Save(ctx, u)
	return err
}
