// Package sessiontest builds sessions backed by the in-memory store for
// flow and handler tests.
package sessiontest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tickethub/internal/session"
	"tickethub/internal/session/store"
	"tickethub/internal/ticketing/models"
	id "tickethub/pkg/domain"
)

// Citizen is the record returned for the card "GHA-123456789-0".
func Citizen() *models.IdentityRecord {
	return &models.IdentityRecord{
		ID:          7,
		CardNumber:  "GHA-123456789-0",
		FirstName:   "Ama",
		LastName:    "Mensah",
		Email:       "ama@example.com",
		PhoneNumber: "0240000000",
	}
}

// Officer is a record verified through the officer endpoint.
func Officer() *models.IdentityRecord {
	return &models.IdentityRecord{
		ID:         3,
		CardNumber: "GHA-000000003-1",
		FirstName:  "Kofi",
		LastName:   "Boateng",
		Email:      "kofi@example.com",
	}
}

// New creates an empty stored session. mutate, when given, is applied
// before the session is returned.
func New(t testing.TB, mutate ...func(*session.Data)) (*session.Session, *store.InMemoryStore) {
	t.Helper()
	st := store.NewMemory()
	data := session.NewData(id.NewSessionID(), "Chrome on macOS", time.Now())
	for _, fn := range mutate {
		fn(data)
	}
	require.NoError(t, st.Create(context.Background(), data))
	return session.Attach(st, data.Clone()), st
}

// WithCitizen populates the citizen slot.
func WithCitizen(d *session.Data) { d.SetSlot(models.RoleCitizen, Citizen()) }

// WithOfficer populates the officer slot.
func WithOfficer(d *session.Data) { d.SetSlot(models.RoleOfficer, Officer()) }

// Reload returns the stored state of sess.
func Reload(t testing.TB, st session.Store, sess *session.Session) *session.Data {
	t.Helper()
	data, err := st.Load(context.Background(), sess.ID())
	require.NoError(t, err)
	return data
}
