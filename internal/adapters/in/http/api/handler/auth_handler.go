// internal/adapters/in/http/api/handler/auth_handler.go
package handler

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	usecase "storefront/internal/application/usecase"
	userdom "storefront/internal/domain/user"
	"storefront/internal/infra/logging"
)

type AuthService interface {
	Register(ctx context.Context, in usecase.RegisterInput) (usecase.Session, error)
	Login(ctx context.Context, email, password string) (usecase.Session, error)
	Profile(ctx context.Context, actor usecase.Actor) (userdom.User, error)
	UpdateProfile(ctx context.Context, actor usecase.Actor, patch userdom.Patch) (userdom.User, error)
	ChangePassword(ctx context.Context, actor usecase.Actor, newPassword string) error
	Logout(ctx context.Context, actor usecase.Actor) error
}

// AuthHandler serves /api/auth. register/login are public.
type AuthHandler struct {
	uc  AuthService
	log *logrus.Entry
}

func NewAuthHandler(uc AuthService) http.Handler {
	return &AuthHandler{uc: uc, log: logging.For("auth_handler")}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r, "/api/auth")
	if len(parts) != 1 {
		notFound(w)
		return
	}

	switch route := parts[0]; {
	case route == "register" && r.Method == http.MethodPost:
		h.register(w, r)
	case route == "login" && r.Method == http.MethodPost:
		h.login(w, r)
	case route == "profile" && r.Method == http.MethodGet:
		h.profile(w, r)
	case route == "profile" && r.Method == http.MethodPut:
		h.updateProfile(w, r)
	case route == "change-password" && (r.Method == http.MethodPut || r.Method == http.MethodPost):
		h.changePassword(w, r)
	case route == "logout" && r.Method == http.MethodPost:
		h.logout(w, r)
	case route == "register", route == "login", route == "profile", route == "change-password", route == "logout":
		methodNotAllowed(w)
	default:
		notFound(w)
	}
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FirstName   string `json:"firstName" validate:"nonblank,max=100"`
	LastName    string `json:"lastName" validate:"nonblank,max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=30"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	FirstName   *string              `json:"firstName" validate:"omitempty,nonblank,max=100"`
	LastName    *string              `json:"lastName" validate:"omitempty,nonblank,max=100"`
	PhoneNumber *string              `json:"phoneNumber" validate:"omitempty,max=30"`
	Preferences *userdom.Preferences `json:"preferences"`
}

type changePasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	s, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "User registered successfully",
		"user":        toUserResponse(s.User),
		"customToken": s.CustomToken,
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	s, err := h.uc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	body := map[string]any{
		"message":     "Login successful",
		"user":        toUserResponse(s.User),
		"customToken": s.CustomToken,
	}
	if s.IDToken != "" {
		body["idToken"] = s.IDToken
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *AuthHandler) profile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	u, err := h.uc.Profile(r.Context(), actor)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *AuthHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req profileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	u, err := h.uc.UpdateProfile(r.Context(), actor, userdom.Patch{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Preferences: req.Preferences,
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    toUserResponse(u),
	})
}

func (h *AuthHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req changePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.uc.ChangePassword(r.Context(), actor, req.NewPassword); err != nil {
		writeErr(w, r, err)
		return
	}
	h.log.Infof("[auth_handler] password changed uid=%s", actor.UserID)
	writeMessage(w, http.StatusOK, "Password updated successfully")
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := h.uc.Logout(r.Context(), actor); err != nil {
		writeErr(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Logged out successfully")
}
