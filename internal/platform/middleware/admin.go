package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"tickethub/pkg/requestcontext"
)

// RequireAdminToken guards the admin pages. The token is accepted from the
// X-Admin-Token header or as the basic-auth password, so a browser can be
// prompted for it. An empty expected token disables the check.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if expectedToken == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Admin-Token")
			if token == "" {
				_, token, _ = r.BasicAuth()
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				logger.WarnContext(r.Context(), "admin token mismatch",
					"request_id", requestcontext.RequestID(r.Context()),
				)
				w.Header().Set("WWW-Authenticate", `Basic realm="tickethub admin"`)
				http.Error(w, "admin token required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
