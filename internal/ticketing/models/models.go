package models

import (
	"fmt"
	"strings"

	id "tickethub/pkg/domain"
)

// This file contains the ticketing records exchanged with the ticket service.
// JSON tags follow the remote's wire names.

// IdentityRecord is a verified citizen or officer profile. It is an
// immutable snapshot of what the ticket service returned.
type IdentityRecord struct {
	ID          id.CitizenID `json:"id"`
	CardNumber  string       `json:"ghana_card"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	Email       string       `json:"email"`
	PhoneNumber string       `json:"phone_number"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
}

// WellFormed reports whether the record can occupy a session slot.
func (r *IdentityRecord) WellFormed() bool {
	return r != nil && r.ID > 0 && strings.TrimSpace(r.CardNumber) != ""
}

func (r *IdentityRecord) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// TicketRecord is a ticket issued to a citizen.
type TicketRecord struct {
	ID     id.TicketID  `json:"id"`
	Title  string       `json:"title"`
	Price  float64      `json:"price"`
	Status TicketStatus `json:"status"`
}

func (t TicketRecord) IsPending() bool { return t.Status == TicketStatusPending }

// AdminTicket is a ticket as listed for administrators, with the owner's
// identity fields inlined.
type AdminTicket struct {
	TicketRecord
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (t AdminTicket) OwnerName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

// TicketOption is an entry in the ticket type catalog.
type TicketOption struct {
	ID    id.TicketTypeID `json:"id"`
	Title string          `json:"title"`
	Price float64         `json:"price"`
}

// DefaultCatalog is served whenever the remote catalog is unavailable or empty.
func DefaultCatalog() []TicketOption {
	return []TicketOption{
		{ID: 1, Title: "Standard", Price: 50},
		{ID: 2, Title: "Over Speeding", Price: 1},
		{ID: 3, Title: "Reckless Driving", Price: 200},
	}
}

// FindOption looks up a catalog entry by id.
func FindOption(catalog []TicketOption, typeID id.TicketTypeID) (TicketOption, bool) {
	for _, opt := range catalog {
		if opt.ID == typeID {
			return opt, true
		}
	}
	return TicketOption{}, false
}

// FormatPrice renders an amount in Ghana cedis.
func FormatPrice(price float64) string {
	if price == float64(int64(price)) {
		return fmt.Sprintf("GHS %d", int64(price))
	}
	return fmt.Sprintf("GHS %.2f", price)
}
