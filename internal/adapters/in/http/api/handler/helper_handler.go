// internal/adapters/in/http/api/handler/helper_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"storefront/internal/adapters/in/http/middleware"
	usecase "storefront/internal/application/usecase"
	"storefront/internal/domain/common"
	userdom "storefront/internal/domain/user"
	"storefront/internal/infra/logging"
)

const maxBodyBytes = 1 << 20 // 1MB

// verboseErrors exposes the underlying message of 500s (development only).
var verboseErrors atomic.Bool

// SetVerboseErrors is called once by the router from APP_ENV.
func SetVerboseErrors(on bool) { verboseErrors.Store(on) }

// ============================================================
// HTTP helpers
// ============================================================

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

func writeErrorMsg(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": strings.TrimSpace(msg)})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeErrorMsg(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func notFound(w http.ResponseWriter) {
	writeErrorMsg(w, http.StatusNotFound, "Route not found")
}

func badRequest(w http.ResponseWriter, msg string) {
	writeErrorMsg(w, http.StatusBadRequest, msg)
}

// statusOf maps a domain error kind to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidArgument),
		errors.Is(err, common.ErrConflict),
		errors.Is(err, common.ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeErr writes err with the status of its kind. Unknown errors are logged and
// answered with a generic 500.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status != http.StatusInternalServerError {
		msg := common.Message(err)
		if msg == "" {
			msg = http.StatusText(status)
		}
		writeErrorMsg(w, status, msg)
		return
	}

	logging.For("api").
		WithError(err).
		WithField("requestId", middleware.RequestIDFromContext(r.Context())).
		Errorf("[api] %s %s failed", r.Method, r.URL.Path)

	msg := "Internal server error"
	if verboseErrors.Load() {
		msg = err.Error()
	}
	writeErrorMsg(w, status, msg)
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if dst == nil {
		return errors.New("dst is nil")
	}
	// unknown fields are ignored so clients can echo whole resources back
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

func parseIntDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// pageFrom reads page/limit; Paginate clamps them.
func pageFrom(r *http.Request, defLimit int) common.Page {
	q := r.URL.Query()
	return common.Page{
		Number:  parseIntDefault(q.Get("page"), 1),
		PerPage: parseIntDefault(q.Get("limit"), defLimit),
	}
}

// pathParts splits the path below prefix: "/api/products/p1/stock" -> ["p1", "stock"].
func pathParts(r *http.Request, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

// ============================================================
// Auth helpers
// ============================================================

// requireActor answers 401 when no authenticated actor is on the request.
func requireActor(w http.ResponseWriter, r *http.Request) (usecase.Actor, bool) {
	if a, ok := usecase.ActorFromContext(r.Context()); ok {
		return a, true
	}
	if status, msg, rejected := middleware.AuthRejection(r.Context()); rejected {
		writeErrorMsg(w, status, msg)
		return usecase.Actor{}, false
	}
	writeErrorMsg(w, http.StatusUnauthorized, "Access token required")
	return usecase.Actor{}, false
}

// requireRole is requireActor plus the role policy.
func requireRole(w http.ResponseWriter, r *http.Request, allowed ...userdom.Role) (usecase.Actor, bool) {
	a, ok := requireActor(w, r)
	if !ok {
		return a, false
	}
	if !a.Can(allowed...) {
		writeErrorMsg(w, http.StatusForbidden, "Insufficient permissions")
		return a, false
	}
	return a, true
}

func requireAdmin(w http.ResponseWriter, r *http.Request) (usecase.Actor, bool) {
	return requireRole(w, r, userdom.RoleAdmin)
}

// actorOrAnon returns the optional actor of a public route.
func actorOrAnon(r *http.Request) usecase.Actor {
	a, _ := usecase.ActorFromContext(r.Context())
	return a
}
