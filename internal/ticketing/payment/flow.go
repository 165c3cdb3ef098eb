// Package payment is the citizen's pending ticket view: it lists the
// citizen's tickets and pays them one at a time per ticket.
//
// Tickets are cached in the session ledger when the view first loads. A
// successful payment flips exactly that ticket to paid in the ledger; the
// list is not fetched again until the citizen refreshes or verifies anew.
package payment

import (
	"context"
	"log/slog"

	"tickethub/internal/guard"
	"tickethub/internal/platform/metrics"
	"tickethub/internal/remote"
	"tickethub/internal/session"
	"tickethub/internal/ticketing/models"
	id "tickethub/pkg/domain"
	dErrors "tickethub/pkg/domain-errors"
	"tickethub/pkg/platform/audit"
	flight "tickethub/pkg/platform/sync"
)

const (
	MsgVerifyFirst      = "Please verify your Ghana Card first."
	MsgSelectMethod     = "Please select a payment method."
	MsgInProgress       = "Payment already in progress"
	MsgAlreadyPaid      = "This ticket has already been paid."
	MsgTicketNotFound   = "Ticket not found."
	Route               = "/pending-ticket"
	EntryRoute          = "/validate-user"
	inFlightRefusalName = "pay"
)

// TicketView is one ticket row.
type TicketView struct {
	models.TicketRecord
	Method   models.PaymentMethod
	InFlight bool
	CanPay   bool
}

// View is the payment page model.
type View struct {
	Citizen *models.IdentityRecord
	Tickets []TicketView
	Methods []models.PaymentMethod
	Loaded  bool
}

// PendingCount returns the number of unpaid tickets.
func (v *View) PendingCount() int {
	n := 0
	for _, t := range v.Tickets {
		if t.IsPending() {
			n++
		}
	}
	return n
}

type Flow struct {
	client   remote.Client
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

func New(client remote.Client, opts ...Option) *Flow {
	f := &Flow{
		client:   client,
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

func flightKey(ticketID id.TicketID) string {
	return "pay:" + ticketID.String()
}

// requireCitizen is the view's own check on top of the route guard.
func requireCitizen(ctx context.Context, sess *session.Session) (*models.IdentityRecord, error) {
	citizen := sess.Citizen()
	if citizen != nil {
		return citizen, nil
	}
	if err := sess.Notify(ctx, session.NoticeError(MsgVerifyFirst)); err != nil {
		return nil, err
	}
	return nil, &guard.Denied{RedirectTo: EntryRoute}
}

// Mount renders the view, fetching the citizen's tickets when the ledger has
// not been loaded yet.
func (f *Flow) Mount(ctx context.Context, sess *session.Session) (*View, error) {
	return f.load(ctx, sess, false)
}

// Refresh discards the cached ledger and fetches the tickets again.
func (f *Flow) Refresh(ctx context.Context, sess *session.Session) (*View, error) {
	return f.load(ctx, sess, true)
}

func (f *Flow) load(ctx context.Context, sess *session.Session, force bool) (*View, error) {
	citizen, err := requireCitizen(ctx, sess)
	if err != nil {
		return nil, err
	}
	// The handoff only carries the record that was just written to the
	// citizen slot.
	if _, err := sess.TakeHandoff(ctx); err != nil {
		return nil, err
	}

	if force || !sess.Snapshot().Ledger.Loaded {
		tickets, res := f.client.ListTickets(ctx, citizen.ID)
		err := sess.Update(ctx, func(d *session.Data) error {
			if !res.OK() {
				d.Ledger.Replace(nil)
				d.Ledger.Loaded = false
				d.PushNotice(session.NoticeError(remote.MsgTicketsFailed))
				return nil
			}
			d.Ledger.Replace(tickets)
			return nil
		})
		if err != nil {
			return nil, err
		}
		if !res.OK() {
			f.logger.WarnContext(ctx, "failed to list citizen tickets",
				"citizen_id", citizen.ID.String(),
				"outcome", res.Outcome(),
				"message", res.Message,
			)
		}
	}
	return f.view(sess, citizen), nil
}

func (f *Flow) view(sess *session.Session, citizen *models.IdentityRecord) *View {
	ledger := sess.Snapshot().Ledger
	v := &View{
		Citizen: citizen,
		Methods: models.PaymentMethods(),
		Loaded:  ledger.Loaded,
		Tickets: make([]TicketView, 0, len(ledger.Tickets)),
	}
	for _, t := range ledger.Tickets {
		method, _ := ledger.Method(t.ID)
		tv := TicketView{
			TicketRecord: t,
			Method:       method,
			InFlight:     f.inFlight.InFlight(flightKey(t.ID)),
		}
		tv.CanPay = t.IsPending() && method != "" && !tv.InFlight
		v.Tickets = append(v.Tickets, tv)
	}
	return v
}

// CanPay reports whether ticketID is pending, has a method chosen for it and
// is not being paid right now.
func (f *Flow) CanPay(sess *session.Session, ticketID id.TicketID) bool {
	ledger := sess.Snapshot().Ledger
	t, ok := ledger.Ticket(ticketID)
	if !ok || !t.IsPending() {
		return false
	}
	if _, ok := ledger.Method(ticketID); !ok {
		return false
	}
	return !f.inFlight.InFlight(flightKey(ticketID))
}

// SelectMethod records the method for exactly one ticket.
func (f *Flow) SelectMethod(ctx context.Context, sess *session.Session, ticketID id.TicketID, rawMethod string) error {
	if _, err := requireCitizen(ctx, sess); err != nil {
		return err
	}
	method, err := models.ParsePaymentMethod(rawMethod)
	if err != nil {
		return err
	}
	return sess.Update(ctx, func(d *session.Data) error {
		if _, ok := d.Ledger.Ticket(ticketID); !ok {
			return dErrors.New(dErrors.CodeNotFound, MsgTicketNotFound)
		}
		d.Ledger.SetMethod(ticketID, method)
		return nil
	})
}

// Pay submits payment for one ticket with its selected method. A method
// posted with the request is selected first. Outcomes are reported as
// session notices; the returned error is reserved for validation, a missing
// citizen and session storage failures.
func (f *Flow) Pay(ctx context.Context, sess *session.Session, ticketID id.TicketID, rawMethod string) error {
	citizen, err := requireCitizen(ctx, sess)
	if err != nil {
		return err
	}
	if rawMethod != "" {
		if err := f.SelectMethod(ctx, sess, ticketID, rawMethod); err != nil {
			return err
		}
	}

	ledger := sess.Snapshot().Ledger
	ticket, ok := ledger.Ticket(ticketID)
	if !ok {
		return sess.Notify(ctx, session.NoticeError(MsgTicketNotFound))
	}
	if !ticket.IsPending() {
		return sess.Notify(ctx, session.NoticeInfo(MsgAlreadyPaid))
	}
	method, ok := ledger.Method(ticketID)
	if !ok {
		return sess.Notify(ctx, session.NoticeWarning(MsgSelectMethod))
	}

	key := flightKey(ticketID)
	if !f.inFlight.TryAcquire(key) {
		f.metrics.IncrementInFlightRefusals(inFlightRefusalName)
		return sess.Notify(ctx, session.NoticeWarning(MsgInProgress))
	}
	defer f.inFlight.Release(key)

	res := f.client.SubmitPayment(ctx, ticketID, method)
	f.metrics.IncrementPayments(method.String(), res.Outcome())

	event := audit.Event{
		Subject:   citizen.ID.String(),
		Role:      models.RoleCitizen.String(),
		TicketID:  int64(ticketID),
		SessionID: sess.ID().String(),
	}
	if !res.OK() {
		event.Action = string(audit.EventPaymentFailed)
		event.Reason = res.Message
		f.audit.Log(ctx, event)
		return sess.Notify(ctx, session.NoticeError(res.Message))
	}

	event.Action = string(audit.EventPaymentCompleted)
	f.audit.Log(ctx, event)
	f.logger.InfoContext(ctx, "ticket paid",
		"citizen_id", citizen.ID.String(),
		"ticket_id", ticketID.String(),
		"method", method.String(),
	)
	return sess.Update(ctx, func(d *session.Data) error {
		d.Ledger.MarkPaid(ticketID)
		d.PushNotice(session.NoticeSuccess(res.Message))
		return nil
	})
}
