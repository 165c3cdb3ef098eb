// Package guard gates views on session capabilities. Evaluation is
// synchronous, reads only the session snapshot and never touches the network.
package guard

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"tickethub/internal/session"
	"tickethub/internal/ticketing/models"
)

// Capability is a pure predicate over the session.
type Capability func(*session.Session) bool

// View produces a page model from the session.
type View[T any] func(*session.Session) (T, error)

// Denied is returned when a capability check fails.
type Denied struct {
	RedirectTo string
}

func (d *Denied) Error() string {
	return fmt.Sprintf("access denied, redirect to %s", d.RedirectTo)
}

// AsDenied extracts a Denied from err.
func AsDenied(err error) (*Denied, bool) {
	var d *Denied
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// Verified holds when the session has a verified identity for role.
func Verified(role models.Role) Capability {
	return func(s *session.Session) bool {
		return s != nil && s.Has(role)
	}
}

// Protect wraps view so it only runs when capability holds; otherwise it
// returns a Denied redirecting to the capability's entry route.
func Protect[T any](capability Capability, redirectTo string, view View[T]) View[T] {
	return func(s *session.Session) (T, error) {
		if !capability(s) {
			var zero T
			return zero, &Denied{RedirectTo: redirectTo}
		}
		return view(s)
	}
}

// Require is the HTTP form of Protect. A session without a verified identity
// for role is sent to redirectTo with 303 and the response is marked
// uncacheable, so the protected page never lands in history.
func Require(role models.Role, redirectTo string, logger *slog.Logger) func(http.Handler) http.Handler {
	allowed := Verified(role)
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := session.FromContext(r.Context())
			if !allowed(sess) {
				logger.DebugContext(r.Context(), "guard redirect",
					"role", role.String(),
					"path", r.URL.Path,
					"redirect_to", redirectTo,
				)
				Redirect(w, r, redirectTo)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Redirect issues a 303 that browsers will not cache.
func Redirect(w http.ResponseWriter, r *http.Request, to string) {
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, to, http.StatusSeeOther)
}
