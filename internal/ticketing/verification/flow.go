// Package verification exchanges an identity card number for a verified
// identity record and writes it to the session slot of the verifying role.
//
// A submission moves idle -> submitting -> success or failure. A failure
// drops back to idle with the typed card number retained. Local validation
// failures never leave idle and never reach the network.
package verification

import (
	"context"
	"log/slog"

	"tickethub/internal/platform/metrics"
	"tickethub/internal/platform/privacy"
	"tickethub/internal/remote"
	"tickethub/internal/session"
	"tickethub/internal/ticketing/models"
	dErrors "tickethub/pkg/domain-errors"
	"tickethub/pkg/platform/audit"
	flight "tickethub/pkg/platform/sync"
)

// State is the verification form's state.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailure    State = "failure"
)

// MsgInProgress is shown when the same session submits again for a role
// before the first call returns.
const MsgInProgress = "Verification already in progress"

// Outcome is what the view renders after a submission.
type Outcome struct {
	State State
	Role  models.Role
	// Form is retained so a failed submission re-renders what was typed.
	Form Form
	// FieldError is the inline validation message; it is never a notice.
	FieldError string
	Record     *models.IdentityRecord
	// RedirectTo is set on success.
	RedirectTo string
}

// Flow runs verification submissions.
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

// WithFlightSet shares an in-flight set, e.g. between instances in tests.
func WithFlightSet(fs *flight.FlightSet) Option {
	return func(f *Flow) {
		if fs != nil {
			f.inFlight = fs
		}
	}
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

// RouteAfter is where a successful verification navigates for role.
func RouteAfter(role models.Role) string {
	if role == models.RoleOfficer {
		return "/ticket"
	}
	return "/pending-ticket"
}

func flightKey(sess *session.Session, role models.Role) string {
	return sess.ID().String() + ":" + role.String()
}

// InFlight reports whether sess has a submission for role outstanding.
func (f *Flow) InFlight(sess *session.Session, role models.Role) bool {
	return f.inFlight.InFlight(flightKey(sess, role))
}

// Submit validates form, verifies the card for role and on success writes
// exactly role's session slot. The returned error is reserved for session
// storage failures; remote outcomes are reported through the Outcome and
// session notices.
func (f *Flow) Submit(ctx context.Context, sess *session.Session, role models.Role, form Form) (*Outcome, error) {
	form.Normalize()
	out := &Outcome{State: StateIdle, Role: role, Form: form}

	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown role")
	}
	if err := form.Validate(); err != nil {
		out.FieldError = dErrors.MessageOf(err)
		return out, nil
	}

	key := flightKey(sess, role)
	if !f.inFlight.TryAcquire(key) {
		f.metrics.IncrementInFlightRefusals("verify")
		return out, sess.Notify(ctx, session.NoticeWarning(MsgInProgress))
	}
	defer f.inFlight.Release(key)

	out.State = StateSubmitting
	res := f.client.VerifyCard(ctx, form.CardNumber, role)
	f.metrics.IncrementVerifications(role.String(), res.Outcome())

	if !res.OK() {
		return f.fail(ctx, sess, out, res.Result)
	}
	return f.succeed(ctx, sess, out, res)
}

func (f *Flow) succeed(ctx context.Context, sess *session.Session, out *Outcome, res remote.VerifyResult) (*Outcome, error) {
	rec := res.Record
	err := sess.Update(ctx, func(d *session.Data) error {
		d.SetSlot(out.Role, rec)
		handoff := *rec
		d.Handoff = &handoff
		d.PushNotice(session.NoticeSuccess(res.Message))
		return nil
	})
	if err != nil {
		return nil, err
	}

	f.logger.InfoContext(ctx, "identity verified",
		"role", out.Role.String(),
		"citizen_id", rec.ID.String(),
		"card", privacy.MaskCardNumber(rec.CardNumber),
		"device", sess.Device(),
	)
	f.audit.Log(ctx, audit.Event{
		Subject:   rec.ID.String(),
		Role:      out.Role.String(),
		Action:    string(audit.EventIdentityVerified),
		SessionID: sess.ID().String(),
	})

	out.State = StateSuccess
	out.Record = rec
	out.RedirectTo = RouteAfter(out.Role)
	return out, nil
}

func (f *Flow) fail(ctx context.Context, sess *session.Session, out *Outcome, res remote.Result) (*Outcome, error) {
	f.logger.InfoContext(ctx, "identity verification failed",
		"role", out.Role.String(),
		"outcome", res.Outcome(),
		"card", privacy.MaskCardNumber(out.Form.CardNumber),
		"device", sess.Device(),
	)
	f.audit.Log(ctx, audit.Event{
		Subject:   privacy.MaskCardNumber(out.Form.CardNumber),
		Role:      out.Role.String(),
		Action:    string(audit.EventVerificationFailed),
		Reason:    res.Message,
		SessionID: sess.ID().String(),
	})

	out.State = StateFailure
	return out, sess.Notify(ctx, session.NoticeError(res.Message))
}

// SignOut clears exactly role's slot and returns the route to land on.
func (f *Flow) SignOut(ctx context.Context, sess *session.Session, role models.Role) (string, error) {
	if !role.IsValid() {
		return "", dErrors.New(dErrors.CodeBadRequest, "unknown role")
	}
	var subject string
	if rec := sess.Identity(role); rec != nil {
		subject = rec.ID.String()
	}
	if err := sess.Clear(ctx, role); err != nil {
		return "", err
	}
	f.audit.Log(ctx, audit.Event{
		Subject:   subject,
		Role:      role.String(),
		Action:    string(audit.EventSignedOut),
		SessionID: sess.ID().String(),
	})
	return "/", nil
}
