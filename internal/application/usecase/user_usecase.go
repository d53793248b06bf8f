// internal/application/usecase/user_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"storefront/internal/domain/common"
	userdom "storefront/internal/domain/user"
	"storefront/internal/infra/logging"
)

// UserUsecase is the admin-facing user management.
type UserUsecase struct {
	repo  userdom.Repository
	idp   IdentityPort
	clock Clock
	log   *logrus.Entry
}

func NewUserUsecase(repo userdom.Repository, idp IdentityPort, clock Clock) *UserUsecase {
	return &UserUsecase{repo: repo, idp: idp, clock: clockOrSystem(clock), log: logging.For("user_uc")}
}

// List returns a page of users (admin only).
func (uc *UserUsecase) List(ctx context.Context, actor Actor, f userdom.Filter, page common.Page) (common.PageResult[userdom.User], error) {
	if !actor.Can(userdom.RoleAdmin) {
		return common.PageResult[userdom.User]{}, userdom.ErrInsufficient
	}
	items, err := uc.repo.List(ctx, f)
	if err != nil {
		return common.PageResult[userdom.User]{}, err
	}
	return common.Paginate(items, page), nil
}

// Get returns a user to an admin or to the user themself.
func (uc *UserUsecase) Get(ctx context.Context, actor Actor, id string) (userdom.User, error) {
	id = strings.TrimSpace(id)
	if !actor.CanAccessOwned(id) {
		return userdom.User{}, userdom.ErrNotOwner
	}
	return uc.repo.GetByID(ctx, id)
}

// CreateUserInput is the admin-side account creation payload.
type CreateUserInput struct {
	RegisterInput
	Role userdom.Role
}

// Create makes an identity account and profile with an explicit role (admin only).
func (uc *UserUsecase) Create(ctx context.Context, actor Actor, in CreateUserInput) (userdom.User, error) {
	if !actor.Can(userdom.RoleAdmin) {
		return userdom.User{}, userdom.ErrInsufficient
	}
	role := in.Role
	if role == "" {
		role = userdom.RoleCustomer
	}
	if !role.IsValid() {
		return userdom.User{}, userdom.ErrInvalidRole
	}
	if len(in.Password) < MinPasswordLength {
		return userdom.User{}, ErrWeakPassword
	}

	email := userdom.NormalizeEmail(in.Email)
	if _, err := uc.repo.GetByEmail(ctx, email); err == nil {
		return userdom.User{}, userdom.ErrEmailTaken
	} else if !errors.Is(err, common.ErrNotFound) {
		return userdom.User{}, err
	}

	uid, err := uc.idp.CreateUser(ctx, NewIdentity{
		Email:       email,
		Password:    in.Password,
		DisplayName: strings.TrimSpace(in.FirstName + " " + in.LastName),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
	})
	if errors.Is(err, ErrIdentityEmailExists) {
		return userdom.User{}, userdom.ErrEmailTaken
	}
	if err != nil {
		return userdom.User{}, fmt.Errorf("create identity: %w", err)
	}

	u, err := userdom.New(uid, email, in.FirstName, in.LastName, in.PhoneNumber, role, uc.clock.Now())
	if err == nil {
		u, err = uc.repo.Create(ctx, u)
	}
	if err != nil {
		discardIdentity(ctx, uc.idp, uc.log, uid)
		return userdom.User{}, err
	}
	return u, nil
}

// discardIdentity removes an identity account whose profile could not be written,
// so the email can register again. A failed delete leaves an orphan that is only logged.
func discardIdentity(ctx context.Context, idp IdentityPort, log *logrus.Entry, uid string) {
	if err := idp.DeleteUser(context.WithoutCancel(ctx), uid); err != nil {
		log.WithError(err).WithField("uid", uid).Errorf("[identity] orphaned identity account uid=%s", uid)
		return
	}
	log.Warnf("[identity] identity account removed after profile write failed uid=%s", uid)
}

// Update lets admins change anything and users change their own non-privileged fields.
func (uc *UserUsecase) Update(ctx context.Context, actor Actor, id string, patch userdom.Patch) (userdom.User, error) {
	id = strings.TrimSpace(id)
	if !actor.CanAccessOwned(id) {
		return userdom.User{}, userdom.ErrNotOwner
	}
	if patch.HasAdminFields() && !actor.IsAdmin() {
		return userdom.User{}, userdom.ErrInsufficient
	}

	u, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return userdom.User{}, err
	}
	wasActive := u.IsActive
	if err := u.Apply(patch, uc.clock.Now()); err != nil {
		return userdom.User{}, err
	}
	saved, err := uc.repo.Save(ctx, u)
	if err != nil {
		return userdom.User{}, err
	}

	if wasActive != saved.IsActive {
		uc.syncDisabled(ctx, saved.ID, !saved.IsActive)
	}
	return saved, nil
}

// Delete deactivates the user and disables the identity account (admin only).
func (uc *UserUsecase) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.Can(userdom.RoleAdmin) {
		return userdom.ErrInsufficient
	}
	u, err := uc.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	u.Deactivate(uc.clock.Now())
	if _, err := uc.repo.Save(ctx, u); err != nil {
		return err
	}
	uc.syncDisabled(ctx, u.ID, true)
	return nil
}

// syncDisabled mirrors the active flag to the identity provider; the document stays authoritative.
func (uc *UserUsecase) syncDisabled(ctx context.Context, uid string, disabled bool) {
	if err := uc.idp.SetDisabled(ctx, uid, disabled); err != nil {
		uc.log.WithError(err).Warnf("[user_uc] identity disable sync failed uid=%s disabled=%t", uid, disabled)
	}
}
