// Package tracer is a small tracing abstraction over OpenTelemetry used by
// the remote client and the ticketing flows.
//
// Implementations:
//   - NoopTracer: for tests
//   - OTelTracer: OpenTelemetry adapter
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks it failed.
	// End must be called exactly once, typically via defer.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span. The returned context carries the span.
	//
	// Example:
	//   ctx, span := tr.Start(ctx, tracer.SpanVerifyCard,
	//       tracer.String(tracer.AttrCardHash, tracer.HashCardNumber(card)),
	//       tracer.String(tracer.AttrRole, "user"),
	//   )
	//   defer span.End(nil)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashCardNumber returns a short SHA-256 prefix of a card number so traces
// can be correlated without carrying the number itself.
func HashCardNumber(card string) string {
	if card == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(card))
	return hex.EncodeToString(hash[:8])
}

// Span names for remote calls.
const (
	SpanVerifyCard      = "remote.verify_card"
	SpanIssueTicket     = "remote.issue_ticket"
	SpanListTicketTypes = "remote.list_ticket_types"
	SpanListTickets     = "remote.list_tickets"
	SpanListAllTickets  = "remote.list_all_tickets"
	SpanSubmitPayment   = "remote.submit_payment"
)

// Attribute keys.
const (
	AttrCardHash   = "card.hash"
	AttrRole       = "role"
	AttrCitizenID  = "citizen.id"
	AttrTicketID   = "ticket.id"
	AttrTicketType = "ticket.type_id"
	AttrMethod     = "payment.method"
	AttrHTTPStatus = "http.status_code"
	AttrOutcome    = "outcome"
)
