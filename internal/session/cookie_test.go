package session

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "tickethub/pkg/domain"
	dErrors "tickethub/pkg/domain-errors"
)

const testSecret = "test-session-secret-0123456789"

func TestCookieCodec(t *testing.T) {
	codec := NewCookieCodec(testSecret)
	sessionID := id.NewSessionID()

	t.Run("round trips the session id", func(t *testing.T) {
		value, err := codec.Encode(sessionID)
		require.NoError(t, err)

		got, err := codec.Decode(value)
		require.NoError(t, err)
		assert.Equal(t, sessionID, got)
	})

	t.Run("rejects a cookie signed with another secret", func(t *testing.T) {
		value, err := NewCookieCodec("another-secret-entirely-000").Encode(sessionID)
		require.NoError(t, err)

		_, err = codec.Decode(value)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects tampered payloads", func(t *testing.T) {
		value, err := codec.Encode(sessionID)
		require.NoError(t, err)
		parts := strings.Split(value, ".")
		require.Len(t, parts, 3)

		forged, err := NewCookieCodec(testSecret).Encode(id.NewSessionID())
		require.NoError(t, err)
		forgedParts := strings.Split(forged, ".")

		_, err = codec.Decode(parts[0] + "." + forgedParts[1] + "." + parts[2])
		assert.Error(t, err)
	})

	t.Run("rejects the none algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, cookieClaims{
			SessionID:        sessionID.String(),
			RegisteredClaims: jwt.RegisteredClaims{Issuer: cookieIssuer},
		})
		value, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = codec.Decode(value)
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := codec.Decode("not-a-jwt")
		assert.Error(t, err)
	})
}

func TestCSRF(t *testing.T) {
	csrf := NewCSRF(testSecret)
	a, b := id.NewSessionID(), id.NewSessionID()

	token := csrf.Token(a)
	assert.True(t, csrf.Verify(a, token))
	assert.Equal(t, token, csrf.Token(a), "deterministic per session")
	assert.False(t, csrf.Verify(b, token), "bound to one session")
	assert.False(t, csrf.Verify(a, ""))
	assert.False(t, csrf.Verify(a, "%%%"))
	assert.False(t, NewCSRF("different-secret-000000").Verify(a, token))
}

func TestDeviceName(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		contains  []string
	}{
		{"empty", "", []string{"Unknown Device"}},
		{
			"chrome on desktop",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			[]string{"Chrome", " on "},
		},
		{
			"safari on iphone",
			"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			[]string{" on ", "iPhone"},
		},
		{
			"firefox on linux",
			"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			[]string{"Firefox", " on "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeviceName(tt.userAgent)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			assert.Equal(t, strings.TrimSpace(got), got)
		})
	}
}
