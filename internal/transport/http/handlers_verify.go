package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tickethub/internal/guard"
	"tickethub/internal/ticketing/models"
	"tickethub/internal/ticketing/verification"
	dErrors "tickethub/pkg/domain-errors"
	"tickethub/pkg/platform/httputil"
	"tickethub/pkg/requestcontext"
)

type verifyPage struct {
	Role       models.Role
	Action     string
	CardNumber string
	FieldError string
	InFlight   bool
}

func verifyTitle(role models.Role) string {
	if role == models.RoleOfficer {
		return "Officer verification"
	}
	return "Verify your Ghana Card"
}

// HandleVerifyPage renders the entry form for role.
func (h *Handler) HandleVerifyPage(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := h.currentSession(w, r)
		if !ok {
			return
		}
		h.pages.render(w, r, http.StatusOK, "verify", verifyTitle(role), verifyPage{
			Role:     role,
			Action:   role.EntryRoute(),
			InFlight: h.verification.InFlight(sess, role),
		})
	}
}

// HandleVerifySubmit verifies the posted card for role. Success redirects to
// the role's next view; anything else re-renders the form with what was typed.
func (h *Handler) HandleVerifySubmit(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess, ok := h.currentSession(w, r)
		if !ok {
			return
		}

		form, err := httputil.DecodeForm[verification.Form](r)
		if err != nil && dErrors.HasCode(err, dErrors.CodeBadRequest) {
			h.fail(w, r, err)
			return
		}

		out, err := h.verification.Submit(ctx, sess, role, *form)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if out.RedirectTo != "" {
			guard.Redirect(w, r, out.RedirectTo)
			return
		}

		status := http.StatusOK
		if out.FieldError != "" {
			status = http.StatusUnprocessableEntity
		}
		h.pages.render(w, r, status, "verify", verifyTitle(role), verifyPage{
			Role:       role,
			Action:     role.EntryRoute(),
			CardNumber: out.Form.CardNumber,
			FieldError: out.FieldError,
			InFlight:   h.verification.InFlight(sess, role),
		})
	}
}

// HandleSignOut clears the slot named in the path. The session itself is
// destroyed once neither role is verified.
func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	role, err := models.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		h.fail(w, r, dErrors.New(dErrors.CodeBadRequest, "unknown role"))
		return
	}

	to, err := h.verification.SignOut(ctx, sess, role)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if sess.Snapshot().Empty() {
		if err := h.sessions.Destroy(w, r, sess); err != nil {
			h.logger.WarnContext(ctx, "failed to destroy session",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
	guard.Redirect(w, r, to)
}
