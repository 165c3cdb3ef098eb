package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "tickethub/pkg/domain-errors"
)

func TestParseTicketID(t *testing.T) {
	id, err := ParseTicketID(" 101 ")
	require.NoError(t, err)
	assert.Equal(t, TicketID(101), id)
	assert.Equal(t, "101", id.String())

	for _, bad := range []string{"", "0", "-3", "abc", "1.5"} {
		_, err := ParseTicketID(bad)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "input %q", bad)
	}
}

func TestParseCitizenAndTicketTypeID(t *testing.T) {
	c, err := ParseCitizenID("7")
	require.NoError(t, err)
	assert.Equal(t, CitizenID(7), c)

	tt, err := ParseTicketTypeID("3")
	require.NoError(t, err)
	assert.Equal(t, TicketTypeID(3), tt)
}

func TestParseSessionID(t *testing.T) {
	raw := uuid.New()
	id, err := ParseSessionID(raw.String())
	require.NoError(t, err)
	assert.Equal(t, raw.String(), id.String())
	assert.False(t, id.IsNil())

	_, err = ParseSessionID("not-a-uuid")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = ParseSessionID("")
	require.Error(t, err)

	assert.True(t, SessionID{}.IsNil())
	assert.False(t, NewSessionID().IsNil())
}

func TestSessionIDJSON(t *testing.T) {
	id := NewSessionID()
	b, err := json.Marshal(struct {
		ID SessionID `json:"id"`
	}{id})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+id.String()+`"}`, string(b))

	var out struct {
		ID SessionID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, id, out.ID)
}
