// Package logsink persists audit events as structured log lines.
package logsink

import (
	"context"
	"log/slog"
	"time"

	audit "tickethub/pkg/platform/audit"
)

// Store writes each event to an slog logger under the "audit" group.
// Without a mirror it keeps nothing, so ListRecent is empty.
type Store struct {
	logger *slog.Logger
	mirror audit.Store
}

type Option func(*Store)

// WithMirror also appends every event to mirror and serves ListRecent from it.
func WithMirror(mirror audit.Store) Option {
	return func(s *Store) { s.mirror = mirror }
}

func New(logger *slog.Logger, opts ...Option) *Store {
	s := &Store{logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "audit event",
		slog.Group("audit",
			slog.String("action", event.Action),
			slog.String("subject", event.Subject),
			slog.String("role", event.Role),
			slog.Int64("ticket_id", event.TicketID),
			slog.String("reason", event.Reason),
			slog.String("session_id", event.SessionID),
			slog.String("request_id", event.RequestID),
			slog.String("at", event.Timestamp.UTC().Format(time.RFC3339Nano)),
		),
	)
	if s.mirror != nil {
		return s.mirror.Append(ctx, event)
	}
	return nil
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	if s.mirror == nil {
		return nil, nil
	}
	return s.mirror.ListRecent(ctx, limit)
}
