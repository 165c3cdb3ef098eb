package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tickethub/internal/guard"
	"tickethub/internal/session"
	"tickethub/internal/ticketing/payment"
	id "tickethub/pkg/domain"
	dErrors "tickethub/pkg/domain-errors"
)

const methodField = "method"

func (h *Handler) renderPending(w http.ResponseWriter, r *http.Request, view *payment.View) {
	h.pages.render(w, r, http.StatusOK, "pending", "Pending tickets", view)
}

// HandlePendingPage lists the citizen's tickets.
func (h *Handler) HandlePendingPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	view, err := h.payment.Mount(r.Context(), sess)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.renderPending(w, r, view)
}

// HandlePendingRefresh fetches the citizen's tickets again.
func (h *Handler) HandlePendingRefresh(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	if _, err := h.payment.Refresh(r.Context(), sess); err != nil {
		h.fail(w, r, err)
		return
	}
	guard.Redirect(w, r, payment.Route)
}

func ticketIDParam(r *http.Request) (id.TicketID, error) {
	ticketID, err := id.ParseTicketID(chi.URLParam(r, "ticketID"))
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid ticket id")
	}
	return ticketID, nil
}

// HandleSelectMethod records the payment method for one ticket.
func (h *Handler) HandleSelectMethod(w http.ResponseWriter, r *http.Request) {
	h.paymentAction(w, r, func(sess *session.Session, ticketID id.TicketID, method string) error {
		return h.payment.SelectMethod(r.Context(), sess, ticketID, method)
	})
}

// HandlePay pays one ticket. A method posted with the request is selected first.
func (h *Handler) HandlePay(w http.ResponseWriter, r *http.Request) {
	h.paymentAction(w, r, func(sess *session.Session, ticketID id.TicketID, method string) error {
		return h.payment.Pay(r.Context(), sess, ticketID, method)
	})
}

// paymentAction runs action and returns to the list. Validation problems are
// shown as notices on the list rather than as an error page.
func (h *Handler) paymentAction(w http.ResponseWriter, r *http.Request, action func(*session.Session, id.TicketID, string) error) {
	ctx := r.Context()
	sess, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	ticketID, err := ticketIDParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	err = action(sess, ticketID, r.PostFormValue(methodField))
	if dErrors.HasCode(err, dErrors.CodeValidation) || dErrors.HasCode(err, dErrors.CodeNotFound) {
		err = sess.Notify(ctx, session.NoticeWarning(dErrors.MessageOf(err)))
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	guard.Redirect(w, r, payment.Route)
}
