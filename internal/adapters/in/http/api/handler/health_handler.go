// internal/adapters/in/http/api/handler/health_handler.go
package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	env   string
	store Pinger
	now   func() time.Time
}

// NewHealthHandler; store may be nil (liveness only).
func NewHealthHandler(env string, store Pinger) http.Handler {
	return &HealthHandler{env: env, store: store, now: time.Now}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w)
		return
	}

	status, code := "OK", http.StatusOK
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			status, code = "UNAVAILABLE", http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, map[string]string{
		"status":      status,
		"timestamp":   h.now().UTC().Format(time.RFC3339),
		"environment": h.env,
	})
}
