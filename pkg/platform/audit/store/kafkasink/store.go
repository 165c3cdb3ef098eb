// Package kafkasink streams audit events to a Kafka topic.
package kafkasink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tickethub/internal/platform/kafka/producer"
	audit "tickethub/pkg/platform/audit"
)

// Producer is the subset of producer.Producer the sink needs.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// record is the wire form of an audit event.
type record struct {
	At        time.Time `json:"at"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject,omitempty"`
	Role      string    `json:"role,omitempty"`
	TicketID  int64     `json:"ticket_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// Store publishes each event keyed by subject, so one person's events stay
// ordered within a partition. It then hands the event to next, which also
// serves ListRecent.
type Store struct {
	producer Producer
	topic    string
	next     audit.Store
}

func New(p Producer, topic string, next audit.Store) *Store {
	return &Store{producer: p, topic: topic, next: next}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(record{
		At:        event.Timestamp.UTC(),
		Action:    event.Action,
		Subject:   event.Subject,
		Role:      event.Role,
		TicketID:  event.TicketID,
		Reason:    event.Reason,
		SessionID: event.SessionID,
		RequestID: event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}

	msg := &producer.Message{
		Topic:   s.topic,
		Key:     []byte(event.Subject),
		Value:   value,
		Headers: map[string]string{"action": event.Action},
	}
	if event.RequestID != "" {
		msg.Headers["request_id"] = event.RequestID
	}
	produceErr := s.producer.Produce(ctx, msg)

	// The local chain still records the event when the broker is down.
	if s.next != nil {
		if err := s.next.Append(ctx, event); err != nil {
			return err
		}
	}
	if produceErr != nil {
		return fmt.Errorf("publish audit event: %w", produceErr)
	}
	return nil
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	if s.next == nil {
		return nil, nil
	}
	return s.next.ListRecent(ctx, limit)
}

// Decode parses a record value written by Append.
func Decode(value []byte) (audit.Event, error) {
	var r record
	if err := json.Unmarshal(value, &r); err != nil {
		return audit.Event{}, fmt.Errorf("decode audit event: %w", err)
	}
	return audit.Event{
		Timestamp: r.At,
		Action:    r.Action,
		Subject:   r.Subject,
		Role:      r.Role,
		TicketID:  r.TicketID,
		Reason:    r.Reason,
		SessionID: r.SessionID,
		RequestID: r.RequestID,
	}, nil
}
