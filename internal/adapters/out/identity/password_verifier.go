// internal/adapters/out/identity/password_verifier.go
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"storefront/internal/application/usecase"
)

// PasswordVerifier checks email/password pairs against the Identity Toolkit
// REST API using the project's web API key.
type PasswordVerifier struct {
	svc *identitytoolkit.Service
}

var _ usecase.PasswordVerifierPort = (*PasswordVerifier)(nil)

func NewPasswordVerifier(ctx context.Context, apiKey string) (*PasswordVerifier, error) {
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("identitytoolkit.NewService: %w", err)
	}
	return &PasswordVerifier{svc: svc}, nil
}

// VerifyPassword returns the ID token for a valid pair and ErrInvalidCredentials otherwise.
func (v *PasswordVerifier) VerifyPassword(ctx context.Context, email, password string) (string, error) {
	resp, err := v.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		if isCredentialError(err) {
			return "", usecase.ErrInvalidCredentials
		}
		return "", fmt.Errorf("verify password: %w", err)
	}
	return resp.IdToken, nil
}

// isCredentialError: the API answers 400 with INVALID_PASSWORD / EMAIL_NOT_FOUND /
// INVALID_LOGIN_CREDENTIALS / USER_DISABLED.
func isCredentialError(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest
}
