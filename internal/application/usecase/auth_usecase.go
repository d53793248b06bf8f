// internal/application/usecase/auth_usecase.go
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

// MinPasswordLength matches the identity provider's minimum.
const MinPasswordLength = 6

var ErrWeakPassword = common.NewError(common.ErrInvalidArgument, fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))

// RegisterInput is the self-service sign-up payload.
type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
}

// Session is returned by Register and Login.
type Session struct {
	User        userdom.User
	CustomToken string
	IDToken     string // empty when password verification is not configured
}

// AuthUsecase handles registration, login and the caller's own profile.
type AuthUsecase struct {
	users    userdom.Repository
	idp      IdentityPort
	password PasswordVerifierPort
	notify   NotifierPort
	clock    Clock
	log      *logrus.Entry
}

// NewAuthUsecase wires the usecase. password and notify may be nil.
func NewAuthUsecase(users userdom.Repository, idp IdentityPort, password PasswordVerifierPort, notify NotifierPort, clock Clock) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		idp:      idp,
		password: password,
		notify:   notifierOrNoop(notify),
		clock:    clockOrSystem(clock),
		log:      logging.For("auth_uc"),
	}
}

// Register creates the identity account and the customer profile document.
func (uc *AuthUsecase) Register(ctx context.Context, in RegisterInput) (Session, error) {
	email := userdom.NormalizeEmail(in.Email)
	if len(in.Password) < MinPasswordLength {
		return Session{}, ErrWeakPassword
	}
	if err := uc.ensureEmailFree(ctx, email); err != nil {
		return Session{}, err
	}

	uid, err := uc.idp.CreateUser(ctx, NewIdentity{
		Email:       email,
		Password:    in.Password,
		DisplayName: strings.TrimSpace(in.FirstName + " " + in.LastName),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
	})
	if errors.Is(err, ErrIdentityEmailExists) {
		return Session{}, userdom.ErrEmailTaken
	}
	if err != nil {
		return Session{}, fmt.Errorf("create identity: %w", err)
	}

	u, err := userdom.New(uid, email, in.FirstName, in.LastName, in.PhoneNumber, userdom.RoleCustomer, uc.clock.Now())
	if err == nil {
		u, err = uc.users.Create(ctx, u)
	}
	if err != nil {
		discardIdentity(ctx, uc.idp, uc.log, uid)
		return Session{}, err
	}

	token, err := uc.idp.CustomToken(ctx, uid)
	if err != nil {
		return Session{}, fmt.Errorf("custom token: %w", err)
	}

	if err := uc.notify.Welcome(ctx, u); err != nil {
		uc.log.WithError(err).Warnf("[auth_uc] welcome mail failed uid=%s", uid)
	}
	uc.log.Infof("[auth_uc] registered uid=%s", uid)
	return Session{User: u, CustomToken: token}, nil
}

// Login checks the account state, verifies the password when a verifier is configured,
// and issues a custom token.
func (uc *AuthUsecase) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := uc.users.GetByEmail(ctx, userdom.NormalizeEmail(email))
	if err != nil {
		return Session{}, err
	}
	if !u.IsActive {
		return Session{}, userdom.ErrDeactivated
	}

	var idToken string
	if uc.password != nil {
		idToken, err = uc.password.VerifyPassword(ctx, u.Email, password)
		if err != nil {
			return Session{}, err
		}
	}

	token, err := uc.idp.CustomToken(ctx, u.ID)
	if err != nil {
		return Session{}, fmt.Errorf("custom token: %w", err)
	}
	return Session{User: u, CustomToken: token, IDToken: idToken}, nil
}

// Profile returns the caller's own user document.
func (uc *AuthUsecase) Profile(ctx context.Context, actor Actor) (userdom.User, error) {
	return uc.users.GetByID(ctx, actor.UserID)
}

// UpdateProfile edits the caller's own non-privileged fields.
func (uc *AuthUsecase) UpdateProfile(ctx context.Context, actor Actor, patch userdom.Patch) (userdom.User, error) {
	if patch.HasAdminFields() {
		return userdom.User{}, userdom.ErrInsufficient
	}
	u, err := uc.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return userdom.User{}, err
	}
	if err := u.Apply(patch, uc.clock.Now()); err != nil {
		return userdom.User{}, err
	}
	return uc.users.Save(ctx, u)
}

func (uc *AuthUsecase) ChangePassword(ctx context.Context, actor Actor, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}
	return uc.idp.UpdatePassword(ctx, actor.UserID, newPassword)
}

// Logout revokes every refresh token of the caller.
func (uc *AuthUsecase) Logout(ctx context.Context, actor Actor) error {
	return uc.idp.RevokeSessions(ctx, actor.UserID)
}

func (uc *AuthUsecase) ensureEmailFree(ctx context.Context, email string) error {
	_, err := uc.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return userdom.ErrEmailTaken
	case errors.Is(err, common.ErrNotFound):
		return nil
	default:
		return err
	}
}
