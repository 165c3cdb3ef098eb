package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "tickethub/pkg/domain"
	dErrors "tickethub/pkg/domain-errors"
)

const cookieIssuer = "tickethub"

// cookieClaims is the signed payload of the session cookie.
type cookieClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// CookieCodec signs and verifies session cookie values as HS256 JWTs.
type CookieCodec struct {
	signingKey []byte
	now        func() time.Time
}

func NewCookieCodec(secret string) *CookieCodec {
	return &CookieCodec{signingKey: []byte(secret), now: time.Now}
}

// Encode returns the cookie value for sessionID.
func (c *CookieCodec) Encode(sessionID id.SessionID) (string, error) {
	claims := cookieClaims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   cookieIssuer,
			IssuedAt: jwt.NewNumericDate(c.now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "sign session cookie")
	}
	return signed, nil
}

// Decode verifies value and returns the session id it carries.
func (c *CookieCodec) Decode(value string) (id.SessionID, error) {
	claims := &cookieClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (any, error) {
		return c.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cookieIssuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return id.SessionID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid session cookie signature")
		}
		return id.SessionID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid session cookie")
	}
	if !token.Valid {
		return id.SessionID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid session cookie")
	}
	return id.ParseSessionID(claims.SessionID)
}
