// internal/adapters/in/http/api/handler/category_handler.go
package handler

import (
	"context"
	"errors"
	"net/http"

	usecase "storefront/internal/application/usecase"
	catdom "storefront/internal/domain/category"
)

type CategoryService interface {
	List(ctx context.Context, actor usecase.Actor, includeInactive bool) ([]usecase.CategoryWithCount, error)
	Get(ctx context.Context, actor usecase.Actor, id string) (usecase.CategoryWithCount, error)
	Create(ctx context.Context, in usecase.CategoryInput) (catdom.Category, error)
	Update(ctx context.Context, id string, patch catdom.Patch) (catdom.Category, error)
	Delete(ctx context.Context, id string) (int, error)
}

// CategoryHandler serves /api/categories.
type CategoryHandler struct {
	uc CategoryService
}

func NewCategoryHandler(uc CategoryService) http.Handler {
	return &CategoryHandler{uc: uc}
}

func (h *CategoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r, "/api/categories")

	switch len(parts) {
	case 0:
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			methodNotAllowed(w)
		}
	case 1:
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, parts[0])
		case http.MethodPut:
			h.update(w, r, parts[0])
		case http.MethodDelete:
			h.delete(w, r, parts[0])
		default:
			methodNotAllowed(w)
		}
	default:
		notFound(w)
	}
}

type categoryCreateRequest struct {
	ID          string `json:"id" validate:"omitempty,max=100"`
	Name        string `json:"name" validate:"nonblank,max=100"`
	Description string `json:"description" validate:"max=500"`
	ParentID    string `json:"parentId"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
}

type categoryPatchRequest struct {
	Name        *string `json:"name" validate:"omitempty,nonblank,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	ParentID    *string `json:"parentId"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,url"`
	IsActive    *bool   `json:"isActive"`
}

func (h *CategoryHandler) list(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("includeInactive") == "true"
	items, err := h.uc.List(r.Context(), actorOrAnon(r), all)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(items))
	for _, c := range items {
		out = append(out, toCategoryWithCount(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CategoryHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.uc.Get(r.Context(), actorOrAnon(r), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryWithCount(c))
}

func (h *CategoryHandler) create(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	var req categoryCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	c, err := h.uc.Create(r.Context(), usecase.CategoryInput{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(c))
}

func (h *CategoryHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	var req categoryPatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	c, err := h.uc.Update(r.Context(), id, catdom.Patch{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (h *CategoryHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	n, err := h.uc.Delete(r.Context(), id)
	if errors.Is(err, catdom.ErrHasProducts) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":        catdom.ErrHasProducts.Msg,
			"productCount": n,
		})
		return
	}
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Category deactivated successfully")
}
