// Package issuance is the officer's ticket form: it resolves the citizen to
// ticket, offers the ticket type catalog and issues the selected type.
package issuance

import (
	"context"
	"log/slog"

	"tickethub/internal/guard"
	"tickethub/internal/platform/metrics"
	"tickethub/internal/remote"
	"tickethub/internal/session"
	"tickethub/internal/ticketing/models"
	"tickethub/internal/ticketing/verification"
	id "tickethub/pkg/domain"
	dErrors "tickethub/pkg/domain-errors"
	"tickethub/pkg/platform/audit"
	"tickethub/pkg/platform/circuit"
	flight "tickethub/pkg/platform/sync"
)

const (
	MsgSubjectMissing = "User data missing. Please verify your Ghana Card first."
	MsgInvalidType    = "Invalid ticket type selected."
	MsgInProgress     = "Ticket generation already in progress"

	// Route is the issuance view; EntryRoute is where it sends visitors
	// without a subject and where it returns after issuing.
	Route      = "/ticket"
	EntryRoute = "/"
)

// Verifier runs the verification flow for the inline re-verify form.
type Verifier interface {
	Submit(ctx context.Context, sess *session.Session, role models.Role, form verification.Form) (*verification.Outcome, error)
}

// View is the issuance page model.
type View struct {
	Subject           *models.IdentityRecord
	Catalog           []models.TicketOption
	CatalogFromRemote bool
	Selected          *models.TicketOption
	Reverify          bool
	Submitting        bool
}

// SubmitOutcome reports where the browser goes after a submission.
type SubmitOutcome struct {
	Issued     bool
	FieldError string
	RedirectTo string
}

type Flow struct {
	client   remote.Client
	verifier Verifier
	breaker  *circuit.Breaker
	inFlight *flight.FlightSet
	logger   *slog.Logger
	audit    *audit.Logger
	metrics  *metrics.Metrics
}

type Option func(*Flow)

func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) { f.logger = logger }
}

func WithAuditLogger(a *audit.Logger) Option {
	return func(f *Flow) { f.audit = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Flow) { f.metrics = m }
}

// WithBreaker replaces the catalog circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(f *Flow) {
		if b != nil {
			f.breaker = b
		}
	}
}

func New(client remote.Client, verifier Verifier, opts ...Option) *Flow {
	f := &Flow{
		client:   client,
		verifier: verifier,
		breaker:  circuit.New("catalog", circuit.WithFailureThreshold(3)),
		inFlight: flight.NewFlightSet(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// subjectOf resolves who the ticket is for: the subject handed to the form,
// then the officer slot, then the citizen slot.
func subjectOf(d *session.Data) *models.IdentityRecord {
	switch {
	case d.Issuance.Subject != nil:
		return d.Issuance.Subject
	case d.Officer != nil:
		return d.Officer
	default:
		return d.Citizen
	}
}

// denySubjectMissing queues the notice and returns the redirect.
func denySubjectMissing(ctx context.Context, sess *session.Session) error {
	if err := sess.Notify(ctx, session.NoticeError(MsgSubjectMissing)); err != nil {
		return err
	}
	return &guard.Denied{RedirectTo: EntryRoute}
}

// Mount prepares the form. A pending navigation handoff becomes the subject;
// with no subject at all the visitor is sent back to the entry route. The
// catalog is fetched once per form and cached on the session.
func (f *Flow) Mount(ctx context.Context, sess *session.Session) (*View, error) {
	var needCatalog bool
	err := sess.Update(ctx, func(d *session.Data) error {
		if d.Handoff != nil {
			d.Issuance.Subject = d.Handoff
			d.Handoff = nil
			d.Issuance.Selected = 0
		}
		needCatalog = subjectOf(d) != nil && !d.Issuance.CatalogLoaded()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if subjectOf(sess.Snapshot()) == nil {
		return nil, denySubjectMissing(ctx, sess)
	}

	if needCatalog {
		catalog, fromRemote := f.loadCatalog(ctx)
		err := sess.Update(ctx, func(d *session.Data) error {
			if !d.Issuance.CatalogLoaded() {
				d.Issuance.Catalog = catalog
				d.Issuance.CatalogFromRemote = fromRemote
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return f.view(sess), nil
}

func (f *Flow) view(sess *session.Session) *View {
	d := sess.Snapshot()
	v := &View{
		Subject:           subjectOf(d),
		Catalog:           d.Issuance.Catalog,
		CatalogFromRemote: d.Issuance.CatalogFromRemote,
		Reverify:          d.Issuance.Reverify,
		Submitting:        f.inFlight.InFlight(flightKey(sess)),
	}
	if opt, ok := d.Issuance.Selection(); ok {
		v.Selected = &opt
	}
	return v
}

// loadCatalog never returns an empty catalog. Any failure, an empty answer
// or an open breaker yields the default catalog.
func (f *Flow) loadCatalog(ctx context.Context) ([]models.TicketOption, bool) {
	if !f.breaker.Allow() {
		f.metrics.IncrementCatalogFallbacks()
		f.logger.DebugContext(ctx, "catalog breaker open, using default catalog")
		return models.DefaultCatalog(), false
	}

	options, res := f.client.ListTicketTypes(ctx)
	if !res.OK() {
		if change := f.breaker.RecordFailure(); change.Opened {
			f.metrics.SetCatalogBreakerOpen(true)
			f.logger.WarnContext(ctx, "catalog circuit opened", "breaker", f.breaker.Name())
		}
		f.metrics.IncrementCatalogFallbacks()
		f.logger.WarnContext(ctx, "catalog fetch failed, using default catalog", "outcome", res.Outcome(), "message", res.Message)
		return models.DefaultCatalog(), false
	}

	if change := f.breaker.RecordSuccess(); change.Closed {
		f.metrics.SetCatalogBreakerOpen(false)
		f.logger.InfoContext(ctx, "catalog circuit closed", "breaker", f.breaker.Name())
	}
	if len(options) == 0 {
		f.metrics.IncrementCatalogFallbacks()
		return models.DefaultCatalog(), false
	}
	return options, true
}

// Select previews a ticket type from the cached catalog. Nothing is fetched.
func (f *Flow) Select(ctx context.Context, sess *session.Session, rawTypeID string) (*View, error) {
	typeID, err := id.ParseTicketTypeID(rawTypeID)
	if err != nil {
		return f.view(sess), dErrors.New(dErrors.CodeValidation, MsgInvalidType)
	}
	err = sess.Update(ctx, func(d *session.Data) error {
		if _, ok := models.FindOption(d.Issuance.Catalog, typeID); !ok {
			return dErrors.New(dErrors.CodeValidation, MsgInvalidType)
		}
		d.Issuance.Selected = typeID
		return nil
	})
	return f.view(sess), err
}

func flightKey(sess *session.Session) string {
	return "issue:" + sess.ID().String()
}

// Submit issues the ticket type to the resolved subject. The type must match
// an entry of the cached catalog; a mismatch is reported inline and never
// sent. Success clears the form and returns to the entry route.
func (f *Flow) Submit(ctx context.Context, sess *session.Session, rawTypeID string) (*SubmitOutcome, error) {
	d := sess.Snapshot()
	subject := subjectOf(d)
	if subject == nil {
		return nil, denySubjectMissing(ctx, sess)
	}

	if rawTypeID == "" && d.Issuance.Selected != 0 {
		rawTypeID = d.Issuance.Selected.String()
	}
	typeID, err := id.ParseTicketTypeID(rawTypeID)
	option, ok := models.FindOption(d.Issuance.Catalog, typeID)
	if err != nil || !ok {
		return &SubmitOutcome{FieldError: MsgInvalidType, RedirectTo: Route}, nil
	}

	key := flightKey(sess)
	if !f.inFlight.TryAcquire(key) {
		f.metrics.IncrementInFlightRefusals("issue")
		return &SubmitOutcome{RedirectTo: Route}, sess.Notify(ctx, session.NoticeWarning(MsgInProgress))
	}
	defer f.inFlight.Release(key)

	res := f.client.IssueTicket(ctx, remote.IssueRequest{CitizenID: subject.ID, TicketTypeID: option.ID})
	f.metrics.IncrementTicketsIssued(res.Outcome())

	event := audit.Event{
		Subject:   subject.ID.String(),
		Role:      models.RoleOfficer.String(),
		SessionID: sess.ID().String(),
	}
	if !res.OK() {
		event.Action = string(audit.EventIssueFailed)
		event.Reason = res.Message
		f.audit.Log(ctx, event)
		return &SubmitOutcome{RedirectTo: Route}, sess.Notify(ctx, session.NoticeError(res.Message))
	}

	event.Action = string(audit.EventTicketIssued)
	f.audit.Log(ctx, event)
	f.logger.InfoContext(ctx, "ticket issued",
		"citizen_id", subject.ID.String(),
		"ticket_type", option.ID.String(),
		"price", option.Price,
	)

	err = sess.Update(ctx, func(d *session.Data) error {
		d.Issuance.Subject = nil
		d.Issuance.Selected = 0
		d.Issuance.Reverify = false
		d.Handoff = nil
		d.PushNotice(session.NoticeSuccess(res.Message))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &SubmitOutcome{Issued: true, RedirectTo: EntryRoute}, nil
}

// ToggleReverify flips between the ticket form and the inline verification form.
func (f *Flow) ToggleReverify(ctx context.Context, sess *session.Session) error {
	return sess.Update(ctx, func(d *session.Data) error {
		d.Issuance.Reverify = !d.Issuance.Reverify
		return nil
	})
}

// Reverify runs the verification flow inline. On success the verified
// record replaces the subject and the form returns to ticket selection on
// the same route.
func (f *Flow) Reverify(ctx context.Context, sess *session.Session, form verification.Form) (*verification.Outcome, error) {
	out, err := f.verifier.Submit(ctx, sess, models.RoleOfficer, form)
	if err != nil || out.State != verification.StateSuccess {
		return out, err
	}

	err = sess.Update(ctx, func(d *session.Data) error {
		if d.Handoff != nil {
			d.Issuance.Subject = d.Handoff
			d.Handoff = nil
		}
		d.Issuance.Reverify = false
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.RedirectTo = Route
	return out, nil
}
