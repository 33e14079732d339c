package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// Assertion describes an identity assertion for SignAssertion.
type Assertion struct {
	Subject       string
	Email         string
	EmailVerified bool
	Issuer        string
	Audience      string
	ExpiresIn     time.Duration
}

// SignAssertion signs an HS256 identity assertion with secret, standing in for
// the external identity provider. ExpiresIn defaults to one hour.
func SignAssertion(t *testing.T, secret string, a Assertion) string {
	t.Helper()
	if a.ExpiresIn == 0 {
		a.ExpiresIn = time.Hour
	}
	now := time.Now()
	registered := jwt.RegisteredClaims{
		Subject:   a.Subject,
		Issuer:    a.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ExpiresIn)),
	}
	if a.Audience != "" {
		registered.Audience = jwt.ClaimStrings{a.Audience}
	}
	claims := struct {
		Email         string `json:"email,omitempty"`
		EmailVerified bool   `json:"email_verified"`
		jwt.RegisteredClaims
	}{a.Email, a.EmailVerified, registered}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}
