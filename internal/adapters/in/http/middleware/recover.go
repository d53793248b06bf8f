// internal/adapters/in/http/middleware/recover.go
package middleware

import (
	"net/http"
	"runtime/debug"

	"storefront/internal/infra/logging"
)

func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				// panic の真因をログに残す
				logging.For("recover").
					WithField("path", r.URL.Path).
					Errorf("[recover] PANIC: %v\n%s", rec, string(debug.Stack()))

				// ※ CORS は外側で付ける（チェーン順が重要）
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
