package audit

import (
	"context"
	"time"
)

// Event is emitted from the ticketing flows to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	// Subject is the identity record id when one is known, otherwise the
	// masked card number.
	Subject   string
	Role      string
	Action    string
	Reason    string
	TicketID  int64
	SessionID string
	RequestID string
}

type AuditEvent string

const (
	EventIdentityVerified   AuditEvent = "identity_verified"
	EventVerificationFailed AuditEvent = "verification_failed"
	EventTicketIssued       AuditEvent = "ticket_issued"
	EventIssueFailed        AuditEvent = "ticket_issue_failed"
	EventPaymentCompleted   AuditEvent = "payment_completed"
	EventPaymentFailed      AuditEvent = "payment_failed"
	EventSignedOut          AuditEvent = "signed_out"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
