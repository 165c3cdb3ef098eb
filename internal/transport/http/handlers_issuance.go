package httptransport

import (
	"net/http"

	"tickethub/internal/guard"
	"tickethub/internal/ticketing/issuance"
	"tickethub/internal/ticketing/verification"
	id "tickethub/pkg/domain"
	dErrors "tickethub/pkg/domain-errors"
	"tickethub/pkg/platform/httputil"
)

const ticketTypeField = "ticket_type"

type ticketPage struct {
	*issuance.View
	SelectedID id.TicketTypeID
	FieldError string
	CardNumber string
	CardError  string
}

func newTicketPage(view *issuance.View) ticketPage {
	p := ticketPage{View: view}
	if view.Selected != nil {
		p.SelectedID = view.Selected.ID
	}
	return p
}

func (h *Handler) renderTicket(w http.ResponseWriter, r *http.Request, status int, page ticketPage) {
	h.pages.render(w, r, status, "ticket", "Issue a ticket", page)
}

// HandleTicketPage renders the issuance form.
func (h *Handler) HandleTicketPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	view, err := h.issuance.Mount(r.Context(), sess)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.renderTicket(w, r, http.StatusOK, newTicketPage(view))
}

// HandleTicketSelect previews the chosen ticket type.
func (h *Handler) HandleTicketSelect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	if _, err := h.issuance.Mount(ctx, sess); err != nil {
		h.fail(w, r, err)
		return
	}

	view, err := h.issuance.Select(ctx, sess, r.PostFormValue(ticketTypeField))
	if dErrors.HasCode(err, dErrors.CodeValidation) {
		page := newTicketPage(view)
		page.FieldError = dErrors.MessageOf(err)
		h.renderTicket(w, r, http.StatusUnprocessableEntity, page)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	guard.Redirect(w, r, issuance.Route)
}

// HandleTicketSubmit issues the selected ticket type.
func (h *Handler) HandleTicketSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	out, err := h.issuance.Submit(ctx, sess, r.PostFormValue(ticketTypeField))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if out.FieldError == "" {
		guard.Redirect(w, r, out.RedirectTo)
		return
	}

	view, err := h.issuance.Mount(ctx, sess)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page := newTicketPage(view)
	page.FieldError = out.FieldError
	h.renderTicket(w, r, http.StatusUnprocessableEntity, page)
}

// HandleTicketReverifyToggle switches between the ticket form and the inline
// card verification form.
func (h *Handler) HandleTicketReverifyToggle(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	if err := h.issuance.ToggleReverify(r.Context(), sess); err != nil {
		h.fail(w, r, err)
		return
	}
	guard.Redirect(w, r, issuance.Route)
}

// HandleTicketReverify verifies another card without leaving the issuance view.
func (h *Handler) HandleTicketReverify(w http.ResponseWriter, r *http.Request) {
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
	out, err := h.issuance.Reverify(ctx, sess, *form)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if out.RedirectTo != "" {
		guard.Redirect(w, r, out.RedirectTo)
		return
	}

	view, err := h.issuance.Mount(ctx, sess)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page := newTicketPage(view)
	page.CardNumber = out.Form.CardNumber
	page.CardError = out.FieldError
	status := http.StatusOK
	if out.FieldError != "" {
		status = http.StatusUnprocessableEntity
	}
	h.renderTicket(w, r, status, page)
}
