// internal/application/usecase/identity_port.go
package usecase

import (
	"context"
	"errors"

	"storefront/internal/domain/common"
	orderdom "storefront/internal/domain/order"
	userdom "storefront/internal/domain/user"
)

var (
	// ErrIdentityEmailExists is returned by IdentityPort.CreateUser for a taken email.
	ErrIdentityEmailExists = errors.New("identity: email already exists")

	ErrInvalidCredentials = common.NewError(common.ErrUnauthorized, "Invalid email or password")
)

// NewIdentity is the account created at the identity provider.
type NewIdentity struct {
	Email       string
	Password    string
	DisplayName string
	PhoneNumber string
}

// IdentityPort は Firebase Auth（Admin SDK）を抽象化したアウトバウンドポートです。
type IdentityPort interface {
	CreateUser(ctx context.Context, in NewIdentity) (uid string, err error)
	CustomToken(ctx context.Context, uid string) (string, error)
	UpdatePassword(ctx context.Context, uid, password string) error
	SetDisabled(ctx context.Context, uid string, disabled bool) error
	RevokeSessions(ctx context.Context, uid string) error
	DeleteUser(ctx context.Context, uid string) error
}

// PasswordVerifierPort checks an email/password pair and returns an ID token.
// It returns ErrInvalidCredentials for a wrong pair.
type PasswordVerifierPort interface {
	VerifyPassword(ctx context.Context, email, password string) (idToken string, err error)
}

// NotifierPort sends transactional email. Failures never fail the calling operation.
type NotifierPort interface {
	Welcome(ctx context.Context, u userdom.User) error
	OrderPlaced(ctx context.Context, u userdom.User, o orderdom.Order) error
}

// noopNotifier is used when mail is not configured.
type noopNotifier struct{}

func (noopNotifier) Welcome(context.Context, userdom.User) error { return nil }

func (noopNotifier) OrderPlaced(context.Context, userdom.User, orderdom.Order) error { return nil }

func notifierOrNoop(n NotifierPort) NotifierPort {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
