package models

import (
	"strings"

	dErrors "tickethub/pkg/domain-errors"
)

// Role selects which session slot and which verification endpoint is used.
type Role string

const (
	RoleCitizen Role = "user"
	RoleOfficer Role = "police"
)

func (r Role) IsValid() bool {
	return r == RoleCitizen || r == RoleOfficer
}

func (r Role) String() string {
	return string(r)
}

func (r Role) Label() string {
	if r == RoleOfficer {
		return "Officer"
	}
	return "Citizen"
}

// EntryRoute is where a visitor in this role verifies their card.
func (r Role) EntryRoute() string {
	if r == RoleOfficer {
		return "/"
	}
	return "/validate-user"
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "unknown role")
	}
	return r, nil
}

// TicketStatus is the payment state of a ticket.
type TicketStatus string

const (
	TicketStatusPending TicketStatus = "pending"
	TicketStatusPaid    TicketStatus = "paid"
)

func (s TicketStatus) IsValid() bool {
	return s == TicketStatusPending || s == TicketStatusPaid
}

func (s TicketStatus) String() string {
	return string(s)
}

// CanTransitionTo allows only pending -> paid.
func (s TicketStatus) CanTransitionTo(target TicketStatus) bool {
	return s == TicketStatusPending && target == TicketStatusPaid
}

// PaymentMethod is how a citizen pays a ticket.
type PaymentMethod string

const (
	PaymentMethodMomo PaymentMethod = "momo"
	PaymentMethodVisa PaymentMethod = "visa"
)

// PaymentMethods lists the accepted methods in display order.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentMethodMomo, PaymentMethodVisa}
}

func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodMomo || m == PaymentMethodVisa
}

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) Label() string {
	switch m {
	case PaymentMethodMomo:
		return "Mobile Money"
	case PaymentMethodVisa:
		return "Visa Card"
	default:
		return string(m)
	}
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "Please select a payment method.")
	}
	return m, nil
}

// StatusFilter narrows the admin ticket listing.
type StatusFilter string

const (
	FilterAll     StatusFilter = "all"
	FilterPaid    StatusFilter = "paid"
	FilterPending StatusFilter = "pending"
)

// ParseStatusFilter maps unknown values to FilterAll.
func ParseStatusFilter(s string) StatusFilter {
	switch f := StatusFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterPaid, FilterPending:
		return f
	default:
		return FilterAll
	}
}

func (f StatusFilter) Matches(status TicketStatus) bool {
	return f == FilterAll || string(f) == string(status)
}
