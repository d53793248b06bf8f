// internal/adapters/in/http/api/handler/user_handler.go
package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	usecase "storefront/internal/application/usecase"
	"storefront/internal/domain/common"
	userdom "storefront/internal/domain/user"
)

type UserService interface {
	List(ctx context.Context, actor usecase.Actor, f userdom.Filter, page common.Page) (common.PageResult[userdom.User], error)
	Get(ctx context.Context, actor usecase.Actor, id string) (userdom.User, error)
	Create(ctx context.Context, actor usecase.Actor, in usecase.CreateUserInput) (userdom.User, error)
	Update(ctx context.Context, actor usecase.Actor, id string, patch userdom.Patch) (userdom.User, error)
	Delete(ctx context.Context, actor usecase.Actor, id string) error
}

// UserHandler serves /api/users.
type UserHandler struct {
	uc UserService
}

func NewUserHandler(uc UserService) http.Handler {
	return &UserHandler{uc: uc}
}

const defaultUserPageSize = 20

func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	parts := pathParts(r, "/api/users")

	switch len(parts) {
	case 0:
		switch r.Method {
		case http.MethodGet:
			h.list(w, r, actor)
		case http.MethodPost:
			h.create(w, r, actor)
		default:
			methodNotAllowed(w)
		}
	case 1:
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, actor, parts[0])
		case http.MethodPut:
			h.update(w, r, actor, parts[0])
		case http.MethodDelete:
			h.delete(w, r, actor, parts[0])
		default:
			methodNotAllowed(w)
		}
	default:
		notFound(w)
	}
}

type userCreateRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FirstName   string `json:"firstName" validate:"nonblank,max=100"`
	LastName    string `json:"lastName" validate:"nonblank,max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=30"`
	Role        string `json:"role" validate:"omitempty,oneof=customer admin guest"`
}

type userPatchRequest struct {
	FirstName   *string              `json:"firstName" validate:"omitempty,nonblank,max=100"`
	LastName    *string              `json:"lastName" validate:"omitempty,nonblank,max=100"`
	PhoneNumber *string              `json:"phoneNumber" validate:"omitempty,max=30"`
	Preferences *userdom.Preferences `json:"preferences"`
	Role        *string              `json:"role" validate:"omitempty,oneof=customer admin guest"`
	IsActive    *bool                `json:"isActive"`
}

func (p userPatchRequest) toPatch() userdom.Patch {
	out := userdom.Patch{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		PhoneNumber: p.PhoneNumber,
		Preferences: p.Preferences,
		IsActive:    p.IsActive,
	}
	if p.Role != nil {
		role := userdom.Role(*p.Role)
		out.Role = &role
	}
	return out
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request, actor usecase.Actor) {
	q := r.URL.Query()
	f := userdom.Filter{Role: userdom.Role(strings.TrimSpace(q.Get("role")))}
	if s := strings.TrimSpace(q.Get("active")); s != "" {
		active, err := strconv.ParseBool(s)
		if err != nil {
			writeValidation(w, []FieldError{{Field: "active", Message: "active must be true or false"}})
			return
		}
		f.Active = &active
	}

	res, err := h.uc.List(r.Context(), actor, f, pageFrom(r, defaultUserPageSize))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	users := make([]userResponse, 0, len(res.Items))
	for _, u := range res.Items {
		users = append(users, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, struct {
		Users []userResponse `json:"users"`
		pageMeta
	}{Users: users, pageMeta: metaOf(res)})
}

func (h *UserHandler) get(w http.ResponseWriter, r *http.Request, actor usecase.Actor, id string) {
	u, err := h.uc.Get(r.Context(), actor, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *UserHandler) create(w http.ResponseWriter, r *http.Request, actor usecase.Actor) {
	var req userCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	u, err := h.uc.Create(r.Context(), actor, usecase.CreateUserInput{
		RegisterInput: usecase.RegisterInput{
			Email:       req.Email,
			Password:    req.Password,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			PhoneNumber: req.PhoneNumber,
		},
		Role: userdom.Role(req.Role),
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    toUserResponse(u),
	})
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request, actor usecase.Actor, id string) {
	var req userPatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	u, err := h.uc.Update(r.Context(), actor, id, req.toPatch())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request, actor usecase.Actor, id string) {
	if err := h.uc.Delete(r.Context(), actor, id); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
