// Package httptransport serves the ticketing pages. Handlers are thin: they
// decode the form, call one flow operation and either redirect or render.
package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"tickethub/internal/guard"
	"tickethub/internal/session"
	"tickethub/internal/ticketing/admin"
	"tickethub/internal/ticketing/issuance"
	"tickethub/internal/ticketing/models"
	"tickethub/internal/ticketing/payment"
	"tickethub/internal/ticketing/verification"
	id "tickethub/pkg/domain"
	dErrors "tickethub/pkg/domain-errors"
	"tickethub/pkg/platform/httputil"
	"tickethub/pkg/platform/sentinel"
	"tickethub/pkg/requestcontext"
)

// VerificationFlow verifies identity cards and clears verified slots.
type VerificationFlow interface {
	Submit(ctx context.Context, sess *session.Session, role models.Role, form verification.Form) (*verification.Outcome, error)
	SignOut(ctx context.Context, sess *session.Session, role models.Role) (string, error)
	InFlight(sess *session.Session, role models.Role) bool
}

// IssuanceFlow drives the officer's ticket form.
type IssuanceFlow interface {
	Mount(ctx context.Context, sess *session.Session) (*issuance.View, error)
	Select(ctx context.Context, sess *session.Session, rawTypeID string) (*issuance.View, error)
	Submit(ctx context.Context, sess *session.Session, rawTypeID string) (*issuance.SubmitOutcome, error)
	ToggleReverify(ctx context.Context, sess *session.Session) error
	Reverify(ctx context.Context, sess *session.Session, form verification.Form) (*verification.Outcome, error)
}

// PaymentFlow drives the citizen's pending ticket list.
type PaymentFlow interface {
	Mount(ctx context.Context, sess *session.Session) (*payment.View, error)
	Refresh(ctx context.Context, sess *session.Session) (*payment.View, error)
	SelectMethod(ctx context.Context, sess *session.Session, ticketID id.TicketID, rawMethod string) error
	Pay(ctx context.Context, sess *session.Session, ticketID id.TicketID, rawMethod string) error
}

// AdminService lists every ticket.
type AdminService interface {
	List(ctx context.Context, sess *session.Session, filter models.StatusFilter) (*admin.View, error)
}

// Handler serves the ticketing pages.
type Handler struct {
	verification VerificationFlow
	issuance     IssuanceFlow
	payment      PaymentFlow
	admin        AdminService
	sessions     *session.Manager
	pages        *renderer
	logger       *slog.Logger
}

// NewHandler parses the page templates and returns a Handler.
func NewHandler(
	sessions *session.Manager,
	verificationFlow VerificationFlow,
	issuanceFlow IssuanceFlow,
	paymentFlow PaymentFlow,
	adminService AdminService,
	logger *slog.Logger,
) (*Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pages, err := newRenderer(sessions, logger)
	if err != nil {
		return nil, err
	}
	return &Handler{
		verification: verificationFlow,
		issuance:     issuanceFlow,
		payment:      paymentFlow,
		admin:        adminService,
		sessions:     sessions,
		pages:        pages,
		logger:       logger,
	}, nil
}

// currentSession returns the session attached by the session middleware.
func (h *Handler) currentSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.logger.ErrorContext(r.Context(), "no session in request context",
			"path", r.URL.Path,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		http.Error(w, "session unavailable", http.StatusServiceUnavailable)
		return nil, false
	}
	return sess, true
}

// fail turns a flow error into a response. Guard denials redirect; domain
// errors answer with their mapped status; everything else is logged.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	if denied, ok := guard.AsDenied(err); ok {
		guard.Redirect(w, r, denied.RedirectTo)
		return
	}

	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) && domainErr.Code != dErrors.CodeInternal {
		h.logger.WarnContext(ctx, "request rejected",
			"path", r.URL.Path,
			"code", string(domainErr.Code),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		http.Error(w, domainErr.Message, httputil.DomainCodeToHTTPStatus(domainErr.Code))
		return
	}

	status := http.StatusInternalServerError
	if errors.Is(err, sentinel.ErrUnavailable) {
		status = http.StatusServiceUnavailable
	}
	h.logger.ErrorContext(ctx, "request failed",
		"path", r.URL.Path,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	http.Error(w, http.StatusText(status), status)
}
