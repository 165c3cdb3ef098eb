package session

import (
	"tickethub/internal/ticketing/models"
	id "tickethub/pkg/domain"
)

// IssuanceState is the officer's ticket form.
type IssuanceState struct {
	// Subject is the citizen the ticket will be issued to, taken from the
	// navigation handoff when the form mounts.
	Subject *models.IdentityRecord `json:"subject,omitempty"`

	Catalog           []models.TicketOption `json:"catalog,omitempty"`
	CatalogFromRemote bool                  `json:"catalog_from_remote,omitempty"`
	Selected          id.TicketTypeID       `json:"selected,omitempty"`
	Reverify          bool                  `json:"reverify,omitempty"`
}

// CatalogLoaded reports whether a catalog has been resolved for the form.
func (s IssuanceState) CatalogLoaded() bool {
	return len(s.Catalog) > 0
}

// Selection returns the catalog entry for the selected type.
func (s IssuanceState) Selection() (models.TicketOption, bool) {
	if s.Selected == 0 {
		return models.TicketOption{}, false
	}
	return models.FindOption(s.Catalog, s.Selected)
}

// Ledger caches the citizen's tickets for the payment view, in the order
// the ticket service listed them, with the method chosen per ticket.
type Ledger struct {
	Loaded  bool                                `json:"loaded,omitempty"`
	Tickets []models.TicketRecord               `json:"tickets,omitempty"`
	Methods map[id.TicketID]models.PaymentMethod `json:"methods,omitempty"`
}

// Ticket looks up a cached ticket.
func (l Ledger) Ticket(ticketID id.TicketID) (models.TicketRecord, bool) {
	for _, t := range l.Tickets {
		if t.ID == ticketID {
			return t, true
		}
	}
	return models.TicketRecord{}, false
}

// Method returns the method chosen for ticketID.
func (l Ledger) Method(ticketID id.TicketID) (models.PaymentMethod, bool) {
	m, ok := l.Methods[ticketID]
	return m, ok
}

// SetMethod records the method for exactly one ticket.
func (l *Ledger) SetMethod(ticketID id.TicketID, method models.PaymentMethod) {
	if l.Methods == nil {
		l.Methods = make(map[id.TicketID]models.PaymentMethod)
	}
	l.Methods[ticketID] = method
}

// MarkPaid flips exactly one pending ticket to paid. It reports whether the
// ticket was found and transitioned.
func (l *Ledger) MarkPaid(ticketID id.TicketID) bool {
	for i := range l.Tickets {
		if l.Tickets[i].ID != ticketID {
			continue
		}
		if !l.Tickets[i].Status.CanTransitionTo(models.TicketStatusPaid) {
			return false
		}
		l.Tickets[i].Status = models.TicketStatusPaid
		return true
	}
	return false
}

// Replace installs a freshly fetched list, keeping methods only for
// tickets that are still listed.
func (l *Ledger) Replace(tickets []models.TicketRecord) {
	l.Loaded = true
	l.Tickets = tickets
	for ticketID := range l.Methods {
		if _, ok := l.Ticket(ticketID); !ok {
			delete(l.Methods, ticketID)
		}
	}
}
