// internal/application/usecase/context.go
package usecase

import (
	"context"

	userdom "storefront/internal/domain/user"
)

// Actor is the authenticated caller of a usecase.
type Actor struct {
	UserID string
	Email  string
	Role   userdom.Role
}

func (a Actor) IsAdmin() bool { return a.Role == userdom.RoleAdmin }

// Can applies the role policy to the actor.
func (a Actor) Can(allowed ...userdom.Role) bool {
	return userdom.Allowed(a.Role, allowed...)
}

// CanAccessOwned reports whether the actor may read a record owned by ownerID.
func (a Actor) CanAccessOwned(ownerID string) bool {
	return a.IsAdmin() || (a.UserID != "" && a.UserID == ownerID)
}

// usecase 層で使う context key
type ctxKey struct{ name string }

var ctxKeyActor = ctxKey{name: "actor"}

// WithActor は middleware から認証済みユーザーを注入するためのヘルパー
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, a)
}

// ActorFromContext returns the injected actor. ok=false for anonymous requests.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKeyActor).(Actor)
	return a, ok
}
