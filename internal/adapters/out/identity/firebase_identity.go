// internal/adapters/out/identity/firebase_identity.go
package identity

import (
	"context"
	"fmt"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"

	"storefront/internal/application/usecase"
	"storefront/internal/domain/common"
)

// AuthClient is the subset of *firebaseauth.Client used here.
type AuthClient interface {
	CreateUser(ctx context.Context, user *firebaseauth.UserToCreate) (*firebaseauth.UserRecord, error)
	CustomToken(ctx context.Context, uid string) (string, error)
	UpdateUser(ctx context.Context, uid string, user *firebaseauth.UserToUpdate) (*firebaseauth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	DeleteUser(ctx context.Context, uid string) error
}

// FirebaseIdentity implements usecase.IdentityPort with the Firebase Admin SDK.
type FirebaseIdentity struct {
	Auth AuthClient
}

var _ usecase.IdentityPort = (*FirebaseIdentity)(nil)

func NewFirebaseIdentity(client AuthClient) *FirebaseIdentity {
	return &FirebaseIdentity{Auth: client}
}

var errNoAuth = common.NewError(common.ErrUnavailable, "Authentication service unavailable")

func (f *FirebaseIdentity) CreateUser(ctx context.Context, in usecase.NewIdentity) (string, error) {
	if f.Auth == nil {
		return "", errNoAuth
	}
	params := (&firebaseauth.UserToCreate{}).
		Email(in.Email).
		Password(in.Password).
		EmailVerified(false).
		Disabled(false)
	if name := strings.TrimSpace(in.DisplayName); name != "" {
		params = params.DisplayName(name)
	}
	// Firebase only accepts E.164 numbers; anything else stays on the profile document only.
	if phone := strings.TrimSpace(in.PhoneNumber); isE164(phone) {
		params = params.PhoneNumber(phone)
	}

	rec, err := f.Auth.CreateUser(ctx, params)
	if err != nil {
		if firebaseauth.IsEmailAlreadyExists(err) {
			return "", fmt.Errorf("%w: %v", usecase.ErrIdentityEmailExists, err)
		}
		return "", err
	}
	return rec.UID, nil
}

func (f *FirebaseIdentity) CustomToken(ctx context.Context, uid string) (string, error) {
	if f.Auth == nil {
		return "", errNoAuth
	}
	return f.Auth.CustomToken(ctx, uid)
}

func (f *FirebaseIdentity) UpdatePassword(ctx context.Context, uid, password string) error {
	if f.Auth == nil {
		return errNoAuth
	}
	_, err := f.Auth.UpdateUser(ctx, uid, (&firebaseauth.UserToUpdate{}).Password(password))
	return err
}

func (f *FirebaseIdentity) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	if f.Auth == nil {
		return errNoAuth
	}
	_, err := f.Auth.UpdateUser(ctx, uid, (&firebaseauth.UserToUpdate{}).Disabled(disabled))
	return err
}

func (f *FirebaseIdentity) RevokeSessions(ctx context.Context, uid string) error {
	if f.Auth == nil {
		return errNoAuth
	}
	return f.Auth.RevokeRefreshTokens(ctx, uid)
}

func (f *FirebaseIdentity) DeleteUser(ctx context.Context, uid string) error {
	if f.Auth == nil {
		return errNoAuth
	}
	err := f.Auth.DeleteUser(ctx, uid)
	if firebaseauth.IsUserNotFound(err) {
		return nil
	}
	return err
}

func isE164(s string) bool {
	if len(s) < 8 || len(s) > 16 || s[0] != '+' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
