package session

import (
	"context"

	"tickethub/internal/ticketing/models"
	id "tickethub/pkg/domain"
)

// Session is the request-scoped handle on a stored session. Reads come from
// the snapshot taken by the last load or write; every write goes through the
// store's atomic Update and refreshes the snapshot.
type Session struct {
	id    id.SessionID
	store Store
	data  *Data
	isNew bool
}

// Attach wraps already loaded data. Used by the manager and by tests.
func Attach(store Store, data *Data) *Session {
	return &Session{id: data.ID, store: store, data: data}
}

func (s *Session) ID() id.SessionID { return s.id }

// IsNew reports whether the session was created by this request.
func (s *Session) IsNew() bool { return s.isNew }

func (s *Session) Device() string { return s.data.Device }

// Snapshot returns a copy of the current session data.
func (s *Session) Snapshot() *Data { return s.data.Clone() }

// Identity returns the record held for role, or nil.
func (s *Session) Identity(role models.Role) *models.IdentityRecord {
	return cloneRecord(s.data.Slot(role))
}

func (s *Session) Citizen() *models.IdentityRecord { return s.Identity(models.RoleCitizen) }
func (s *Session) Officer() *models.IdentityRecord { return s.Identity(models.RoleOfficer) }

// Has reports whether role's slot is populated.
func (s *Session) Has(role models.Role) bool {
	return s.data.Slot(role) != nil
}

// Update applies fn atomically to the stored session and refreshes the
// snapshot. An error from fn aborts the write and is returned unchanged.
func (s *Session) Update(ctx context.Context, fn func(*Data) error) error {
	data, err := s.store.Update(ctx, s.id, fn)
	if err != nil {
		return err
	}
	s.data = data
	return nil
}

func (s *Session) mutate(ctx context.Context, fn func(*Data)) error {
	return s.Update(ctx, func(d *Data) error {
		fn(d)
		return nil
	})
}

// SetIdentity writes exactly role's slot.
func (s *Session) SetIdentity(ctx context.Context, role models.Role, rec *models.IdentityRecord) error {
	return s.mutate(ctx, func(d *Data) { d.SetSlot(role, rec) })
}

// Clear signs role out.
func (s *Session) Clear(ctx context.Context, role models.Role) error {
	return s.mutate(ctx, func(d *Data) { d.ClearSlot(role) })
}

// Notify queues a notice for the next rendered page.
func (s *Session) Notify(ctx context.Context, n Notice) error {
	return s.mutate(ctx, func(d *Data) { d.PushNotice(n) })
}

// TakeNotices drains queued notices.
func (s *Session) TakeNotices(ctx context.Context) ([]Notice, error) {
	if len(s.data.Notices) == 0 {
		return nil, nil
	}
	var notices []Notice
	err := s.mutate(ctx, func(d *Data) { notices = d.DrainNotices() })
	return notices, err
}

// Handoff stores a one-shot payload for the next view.
func (s *Session) Handoff(ctx context.Context, rec *models.IdentityRecord) error {
	return s.mutate(ctx, func(d *Data) { d.Handoff = cloneRecord(rec) })
}

// TakeHandoff returns and clears the pending handoff.
func (s *Session) TakeHandoff(ctx context.Context) (*models.IdentityRecord, error) {
	if s.data.Handoff == nil {
		return nil, nil
	}
	var rec *models.IdentityRecord
	err := s.mutate(ctx, func(d *Data) {
		rec = d.Handoff
		d.Handoff = nil
	})
	return rec, err
}
