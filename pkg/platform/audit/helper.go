package audit

import (
	"context"
	"log/slog"

	"tickethub/pkg/requestcontext"
)

// Emitter is the interface for audit event emission.
// Satisfied by publisher.Publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Logger provides structured audit logging with optional event emission.
// The flows use it so every audited action is logged the same way.
type Logger struct {
	textLogger *slog.Logger
	emitter    Emitter
}

// NewLogger creates an audit logger. Events go to emitter when one is set and
// its store chain writes the audit record; textLogger then only reports emit
// failures. Without an emitter each event is written to textLogger instead.
func NewLogger(textLogger *slog.Logger, emitter Emitter) *Logger {
	return &Logger{
		textLogger: textLogger,
		emitter:    emitter,
	}
}

// Log records an audit event once, through the emitter or the text log.
// The request id is taken from ctx.
//
// Usage:
//
//	logger.Log(ctx, audit.Event{Action: string(audit.EventTicketIssued), Subject: "7", Role: "police"})
func (l *Logger) Log(ctx context.Context, event Event) {
	if l == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if l.emitter == nil {
		l.logToText(ctx, event)
		return
	}
	l.emitToAudit(ctx, event)
}

func (l *Logger) logToText(ctx context.Context, event Event) {
	if l.textLogger == nil {
		return
	}
	args := []any{"event", event.Action, "log_type", "audit", "subject", event.Subject}
	if event.Role != "" {
		args = append(args, "role", event.Role)
	}
	if event.TicketID != 0 {
		args = append(args, "ticket_id", event.TicketID)
	}
	if event.Reason != "" {
		args = append(args, "reason", event.Reason)
	}
	if event.RequestID != "" {
		args = append(args, "request_id", event.RequestID)
	}
	l.textLogger.InfoContext(ctx, event.Action, args...)
}

func (l *Logger) emitToAudit(ctx context.Context, event Event) {
	if err := l.emitter.Emit(ctx, event); err != nil && l.textLogger != nil {
		l.textLogger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"event", event.Action,
		)
	}
}
