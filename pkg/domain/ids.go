// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	dErrors "tickethub/pkg/domain-errors"
)

// SessionID identifies a browser session.
type SessionID uuid.UUID

// Remote ids are positive integers assigned by the ticket service.
// Distinct types keep a ticket id from being passed where a citizen id is expected.
type (
	CitizenID    int64
	TicketID     int64
	TicketTypeID int64
)

// NewSessionID returns a random session id.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// Parse functions - use at trust boundaries (path params, form values, cookies).

func ParseSessionID(s string) (SessionID, error) {
	if s == "" {
		return SessionID{}, dErrors.New(dErrors.CodeBadRequest, "session ID cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return SessionID{}, dErrors.New(dErrors.CodeBadRequest, "invalid session ID")
	}
	return SessionID(id), nil
}

func ParseCitizenID(s string) (CitizenID, error) {
	n, err := parsePositive(s, "citizen ID")
	return CitizenID(n), err
}

func ParseTicketID(s string) (TicketID, error) {
	n, err := parsePositive(s, "ticket ID")
	return TicketID(n), err
}

func ParseTicketTypeID(s string) (TicketTypeID, error) {
	n, err := parsePositive(s, "ticket type ID")
	return TicketTypeID(n), err
}

// String methods - for logging, keys and URLs.

func (id SessionID) String() string    { return uuid.UUID(id).String() }
func (id CitizenID) String() string    { return strconv.FormatInt(int64(id), 10) }
func (id TicketID) String() string     { return strconv.FormatInt(int64(id), 10) }
func (id TicketTypeID) String() string { return strconv.FormatInt(int64(id), 10) }

func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func parsePositive(s, label string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeValidation, label+" cannot be empty")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "invalid "+label)
	}
	return n, nil
}

// MarshalText encodes the session id in its canonical uuid form.
func (id SessionID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *SessionID) UnmarshalText(b []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return err
	}
	*id = SessionID(u)
	return nil
}
