package middleware

import (
	"net/http"
	"strings"

	"github.com/wolfman30/mindcare/internal/sessionctx"
)

const maxSessionIDLen = 128

// RequireSession copies the X-Session-Id header into the request context and
// rejects requests without one.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := strings.TrimSpace(r.Header.Get(sessionctx.Header))
		if sid == "" {
			http.Error(w, "missing "+sessionctx.Header+" header", http.StatusBadRequest)
			return
		}
		if len(sid) > maxSessionIDLen || strings.ContainsAny(sid, ": \t") {
			http.Error(w, "invalid "+sessionctx.Header+" header", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(sessionctx.WithSessionID(r.Context(), sid)))
	})
}
