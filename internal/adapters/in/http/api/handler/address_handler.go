// internal/adapters/in/http/api/handler/address_handler.go
package handler

import (
	"context"
	"net/http"

	usecase "storefront/internal/application/usecase"
	userdom "storefront/internal/domain/user"
)

type AddressService interface {
	List(ctx context.Context, actor usecase.Actor) ([]userdom.Address, error)
	Get(ctx context.Context, actor usecase.Actor, id string) (userdom.Address, error)
	Create(ctx context.Context, actor usecase.Actor, f userdom.AddressFields, makeDefault bool) (userdom.Address, error)
	Update(ctx context.Context, actor usecase.Actor, id string, f userdom.AddressFields, makeDefault bool) (userdom.Address, error)
	Delete(ctx context.Context, actor usecase.Actor, id string) error
	SetDefault(ctx context.Context, actor usecase.Actor, id string) (userdom.Address, error)
}

// AddressHandler serves /api/addresses for the caller's own address book.
type AddressHandler struct {
	uc AddressService
}

func NewAddressHandler(uc AddressService) http.Handler {
	return &AddressHandler{uc: uc}
}

func (h *AddressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	parts := pathParts(r, "/api/addresses")

	switch {
	case len(parts) == 0:
		switch r.Method {
		case http.MethodGet:
			h.list(w, r, actor)
		case http.MethodPost:
			h.create(w, r, actor)
		default:
			methodNotAllowed(w)
		}
	case len(parts) == 1:
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
	case len(parts) == 2 && parts[1] == "default":
		if r.Method != http.MethodPatch {
			methodNotAllowed(w)
			return
		}
		h.setDefault(w, r, actor, parts[0])
	default:
		notFound(w)
	}
}

type addressCreateRequest struct {
	Type        string `json:"type" validate:"required,oneof=home work other"`
	FirstName   string `json:"firstName" validate:"nonblank,max=100"`
	LastName    string `json:"lastName" validate:"nonblank,max=100"`
	Street      string `json:"street" validate:"nonblank,max=200"`
	City        string `json:"city" validate:"nonblank,max=100"`
	State       string `json:"state" validate:"nonblank,max=100"`
	ZipCode     string `json:"zipCode" validate:"nonblank,max=20"`
	Country     string `json:"country" validate:"nonblank,max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=30"`
	IsDefault   bool   `json:"isDefault"`
}

func (req addressCreateRequest) fields() userdom.AddressFields {
	t := userdom.AddressType(req.Type)
	return userdom.AddressFields{
		Type:        &t,
		FirstName:   &req.FirstName,
		LastName:    &req.LastName,
		Street:      &req.Street,
		City:        &req.City,
		State:       &req.State,
		ZipCode:     &req.ZipCode,
		Country:     &req.Country,
		PhoneNumber: &req.PhoneNumber,
	}
}

type addressPatchRequest struct {
	Type        *string `json:"type" validate:"omitempty,oneof=home work other"`
	FirstName   *string `json:"firstName" validate:"omitempty,nonblank,max=100"`
	LastName    *string `json:"lastName" validate:"omitempty,nonblank,max=100"`
	Street      *string `json:"street" validate:"omitempty,nonblank,max=200"`
	City        *string `json:"city" validate:"omitempty,nonblank,max=100"`
	State       *string `json:"state" validate:"omitempty,nonblank,max=100"`
	ZipCode     *string `json:"zipCode" validate:"omitempty,nonblank,max=20"`
	Country     *string `json:"country" validate:"omitempty,nonblank,max=100"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=30"`
	IsDefault   bool    `json:"isDefault"`
}

func (req addressPatchRequest) fields() userdom.AddressFields {
	f := userdom.AddressFields{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Street:      req.Street,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		Country:     req.Country,
		PhoneNumber: req.PhoneNumber,
	}
	if req.Type != nil {
		t := userdom.AddressType(*req.Type)
		f.Type = &t
	}
	return f
}

func (h *AddressHandler) list(w http.ResponseWriter, r *http.Request, actor usecase.Actor) {
	items, err := h.uc.List(r.Context(), actor)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAddressResponses(items))
}

func (h *AddressHandler) get(w http.ResponseWriter, r *http.Request, actor usecase.Actor, id string) {
	a, err := h.uc.Get(r.Context(), actor, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAddressResponse(a))
}

func (h *AddressHandler) create(w http.ResponseWriter, r *http.Request, actor usecase.Actor) {
	var req addressCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	a, err := h.uc.Create(r.Context(), actor, req.fields(), req.IsDefault)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Address added successfully",
		"address": toAddressResponse(a),
	})
}

func (h *AddressHandler) update(w http.ResponseWriter, r *http.Request, actor usecase.Actor, id string) {
	var req addressPatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	a, err := h.uc.Update(r.Context(), actor, id, req.fields(), req.IsDefault)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Address updated successfully",
		"address": toAddressResponse(a),
	})
}

func (h *AddressHandler) delete(w http.ResponseWriter, r *http.Request, actor usecase.Actor, id string) {
	if err := h.uc.Delete(r.Context(), actor, id); err != nil {
		writeErr(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Address deleted successfully")
}

func (h *AddressHandler) setDefault(w http.ResponseWriter, r *http.Request, actor usecase.Actor, id string) {
	a, err := h.uc.SetDefault(r.Context(), actor, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Default address updated successfully",
		"address": toAddressResponse(a),
	})
}
