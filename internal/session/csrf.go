package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	id "tickethub/pkg/domain"
)

// CSRFField is the form field carrying the token on every POST form.
const (
	CSRFField  = "csrf_token"
	CSRFHeader = "X-CSRF-Token"
)

// CSRF derives per-session form tokens as HMAC-SHA256 of the session id.
type CSRF struct {
	key []byte
}

func NewCSRF(secret string) *CSRF {
	return &CSRF{key: []byte("csrf:" + secret)}
}

// Token returns the token for sessionID.
func (c *CSRF) Token(sessionID id.SessionID) string {
	return base64.RawURLEncoding.EncodeToString(c.mac(sessionID))
}

// Verify reports whether token belongs to sessionID.
func (c *CSRF) Verify(sessionID id.SessionID, token string) bool {
	got, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return false
	}
	return hmac.Equal(got, c.mac(sessionID))
}

func (c *CSRF) mac(sessionID id.SessionID) []byte {
	h := hmac.New(sha256.New, c.key)
	h.Write([]byte(sessionID.String()))
	return h.Sum(nil)
}
