// Package admin provides the read-only administrator listing of every issued
// ticket together with recent workflow activity.
package admin

import (
	"context"
	"log/slog"

	"tickethub/internal/remote"
	"tickethub/internal/session"
	"tickethub/internal/ticketing/models"
	"tickethub/pkg/platform/audit"
)

const recentEventsLimit = 20

// Counts summarises the full listing regardless of the active filter.
type Counts struct {
	All     int
	Paid    int
	Pending int
}

// View is the admin page model.
type View struct {
	Filter  models.StatusFilter
	Tickets []models.AdminTicket
	Counts  Counts
	// Loaded is false when the remote listing failed.
	Loaded       bool
	RecentEvents []audit.Event
}

// Service lists tickets for administrators
type Service struct {
	client remote.Client
	events EventSource
	logger *slog.Logger
}

// EventSource returns recent audit events, newest first. Satisfied by
// publisher.Publisher.
type EventSource interface {
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithEventSource shows the most recent audit events next to the listing.
func WithEventSource(events EventSource) Option {
	return func(s *Service) { s.events = events }
}

// NewService creates a new admin service
func NewService(client remote.Client, opts ...Option) *Service {
	s := &Service{client: client}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// List fetches every ticket and applies filter locally. A failed fetch adds a
// notice to sess and yields an empty listing.
func (s *Service) List(ctx context.Context, sess *session.Session, filter models.StatusFilter) (*View, error) {
	view := &View{Filter: filter}

	tickets, res := s.client.ListAllTickets(ctx)
	if !res.OK() {
		s.logger.WarnContext(ctx, "failed to list all tickets",
			"outcome", res.Outcome(),
			"message", res.Message,
		)
		if err := sess.Notify(ctx, session.NoticeError(remote.MsgTicketsFailed)); err != nil {
			return nil, err
		}
	} else {
		view.Loaded = true
		view.Counts = count(tickets)
		view.Tickets = Filter(tickets, filter)
	}

	view.RecentEvents = s.recentEvents(ctx)
	return view, nil
}

// recentEvents never fails the page; audit history is best effort.
func (s *Service) recentEvents(ctx context.Context) []audit.Event {
	if s.events == nil {
		return nil
	}
	events, err := s.events.Recent(ctx, recentEventsLimit)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to list recent audit events", "error", err)
		return nil
	}
	return events
}

// Filter returns the tickets whose status matches filter, in listing order.
func Filter(tickets []models.AdminTicket, filter models.StatusFilter) []models.AdminTicket {
	out := make([]models.AdminTicket, 0, len(tickets))
	for _, t := range tickets {
		if filter.Matches(t.Status) {
			out = append(out, t)
		}
	}
	return out
}

func count(tickets []models.AdminTicket) Counts {
	c := Counts{All: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case models.TicketStatusPaid:
			c.Paid++
		case models.TicketStatusPending:
			c.Pending++
		}
	}
	return c
}
