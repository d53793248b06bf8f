// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/sirupsen/logrus"

	usecase "storefront/internal/application/usecase"
	"storefront/internal/domain/common"
	userdom "storefront/internal/domain/user"
	"storefront/internal/infra/logging"
)

// FirebaseAuthClient は firebase auth クライアントのエイリアス。
type FirebaseAuthClient = fbauth.Client

// TokenVerifier is the part of the Firebase Auth client the gate needs.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// AuthMiddleware は
//
//   - Authorization: Bearer <ID_TOKEN>
//
// を検証し、Firestore の users/{uid} を読んで Actor を context に詰めて次へ渡す。
type AuthMiddleware struct {
	Verifier TokenVerifier
	Users    userdom.Repository

	log *logrus.Entry
}

func NewAuthMiddleware(v TokenVerifier, users userdom.Repository) *AuthMiddleware {
	return &AuthMiddleware{Verifier: v, Users: users, log: logging.For("auth_mw")}
}

// Handler rejects requests without a valid token for an active user.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Verifier == nil || m.Users == nil {
			writeError(w, http.StatusServiceUnavailable, "auth middleware not initialized")
			return
		}

		idToken, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Access token required")
			return
		}

		actor, status, msg := m.resolve(r.Context(), idToken)
		if status != 0 {
			writeError(w, status, msg)
			return
		}
		next.ServeHTTP(w, r.WithContext(usecase.WithActor(r.Context(), actor)))
	})
}

// Optional attaches the actor when a valid token is present and otherwise
// lets the request through anonymously.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idToken, ok := bearerToken(r)
		if !ok || m.Verifier == nil || m.Users == nil {
			next.ServeHTTP(w, r)
			return
		}
		actor, status, msg := m.resolve(r.Context(), idToken)
		if status != 0 {
			// 拒否理由だけ残して匿名で通す（保護ルートはハンドラ側で返す）
			ctx := context.WithValue(r.Context(), ctxKeyRejection, rejection{status: status, msg: msg})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		next.ServeHTTP(w, r.WithContext(usecase.WithActor(r.Context(), actor)))
	})
}

type rejection struct {
	status int
	msg    string
}

var ctxKeyRejection = ctxKey{name: "authRejection"}

// AuthRejection reports why Optional dropped a presented token.
func AuthRejection(ctx context.Context) (status int, msg string, ok bool) {
	rj, ok := ctx.Value(ctxKeyRejection).(rejection)
	return rj.status, rj.msg, ok
}

// resolve returns a non-zero status with its message when the token is rejected.
func (m *AuthMiddleware) resolve(ctx context.Context, idToken string) (usecase.Actor, int, string) {
	token, err := m.Verifier.VerifyIDToken(ctx, idToken)
	if err != nil || token == nil || strings.TrimSpace(token.UID) == "" {
		return usecase.Actor{}, http.StatusUnauthorized, "Invalid or expired token"
	}

	u, err := m.Users.GetByID(ctx, strings.TrimSpace(token.UID))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return usecase.Actor{}, http.StatusNotFound, "User not found in database"
		}
		m.log.WithError(err).Errorf("[auth_mw] load user uid=%s", token.UID)
		return usecase.Actor{}, http.StatusInternalServerError, "Internal server error"
	}
	if !u.IsActive {
		return usecase.Actor{}, http.StatusForbidden, "Account is deactivated"
	}

	return usecase.Actor{UserID: u.ID, Email: u.Email, Role: u.Role}, 0, ""
}

// RequireRole must run after Handler.
func RequireRole(allowed ...userdom.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := usecase.ActorFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !actor.Can(allowed...) {
				writeError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return idToken, idToken != ""
}
