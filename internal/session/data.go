// Package session holds the server-side browser session: the two verified
// identity slots, one-shot notices and navigation handoff, and the per-view
// state of the issuance and payment screens.
package session

import (
	"context"
	"maps"
	"slices"
	"time"

	"tickethub/internal/ticketing/models"
	id "tickethub/pkg/domain"
)

// Store persists session data. Implementations must apply Update atomically
// per session so concurrent requests on one session never lose each other's
// writes.
//
// Error Contract:
//   - Load returns sentinel.ErrNotFound when the session does not exist
//   - Update treats a missing session as empty and creates it
//   - infrastructure failures are wrapped with context
type Store interface {
	Create(ctx context.Context, data *Data) error
	Load(ctx context.Context, sessionID id.SessionID) (*Data, error)
	Update(ctx context.Context, sessionID id.SessionID, fn func(*Data) error) (*Data, error)
	Delete(ctx context.Context, sessionID id.SessionID) error
}

// Data is the persisted session document.
type Data struct {
	ID        id.SessionID `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Device    string       `json:"device,omitempty"`

	Citizen *models.IdentityRecord `json:"verified_user,omitempty"`
	Officer *models.IdentityRecord `json:"verified_police,omitempty"`

	Notices []Notice               `json:"notices,omitempty"`
	Handoff *models.IdentityRecord `json:"handoff,omitempty"`

	Issuance IssuanceState `json:"issuance"`
	Ledger   Ledger        `json:"ledger"`
}

// NewData returns an empty session created at now.
func NewData(sessionID id.SessionID, device string, now time.Time) *Data {
	return &Data{ID: sessionID, CreatedAt: now, Device: device}
}

// Slot returns the identity held for role, or nil.
func (d *Data) Slot(role models.Role) *models.IdentityRecord {
	switch role {
	case models.RoleCitizen:
		return d.Citizen
	case models.RoleOfficer:
		return d.Officer
	default:
		return nil
	}
}

// SetSlot writes exactly the slot for role. Malformed records are ignored.
// A new citizen verification starts a fresh payment ledger.
func (d *Data) SetSlot(role models.Role, rec *models.IdentityRecord) {
	if !rec.WellFormed() {
		return
	}
	snapshot := *rec
	switch role {
	case models.RoleCitizen:
		d.Citizen = &snapshot
		d.Ledger = Ledger{}
	case models.RoleOfficer:
		d.Officer = &snapshot
	}
}

// ClearSlot empties the slot for role together with the view state that
// belongs to it: the payment ledger for citizens, issuance for officers.
// A pending handoff is dropped for either role.
func (d *Data) ClearSlot(role models.Role) {
	d.Handoff = nil
	switch role {
	case models.RoleCitizen:
		d.Citizen = nil
		d.Ledger = Ledger{}
	case models.RoleOfficer:
		d.Officer = nil
		d.Issuance = IssuanceState{}
	}
}

// Empty reports whether neither role is verified.
func (d *Data) Empty() bool {
	return d.Citizen == nil && d.Officer == nil
}

// Clone returns a deep copy.
func (d *Data) Clone() *Data {
	if d == nil {
		return nil
	}
	out := *d
	out.Citizen = cloneRecord(d.Citizen)
	out.Officer = cloneRecord(d.Officer)
	out.Handoff = cloneRecord(d.Handoff)
	out.Notices = slices.Clone(d.Notices)
	out.Issuance.Subject = cloneRecord(d.Issuance.Subject)
	out.Issuance.Catalog = slices.Clone(d.Issuance.Catalog)
	out.Ledger.Tickets = slices.Clone(d.Ledger.Tickets)
	out.Ledger.Methods = maps.Clone(d.Ledger.Methods)
	return &out
}

func cloneRecord(rec *models.IdentityRecord) *models.IdentityRecord {
	if rec == nil {
		return nil
	}
	c := *rec
	return &c
}
