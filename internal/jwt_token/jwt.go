package jwttoken

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"nolatabs/internal/identity/models"
	"nolatabs/internal/platform/config"
	dErrors "nolatabs/pkg/domain-errors"
)

// Claims are the claims read from an identity assertion.
type Claims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// Verifier checks identity assertions issued by the external provider.
type Verifier struct {
	method jwt.SigningMethod
	key    any
	parser *jwt.Parser
}

// NewHMACVerifier verifies HS256 assertions with a shared secret.
func NewHMACVerifier(secret, issuer, audience string) *Verifier {
	return newVerifier(jwt.SigningMethodHS256, []byte(secret), issuer, audience)
}

// NewRSAVerifier verifies RS256 assertions with the provider's PEM encoded
// public key.
func NewRSAVerifier(publicKeyPEM, issuer, audience string) (*Verifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse identity public key: %w", err)
	}
	return newVerifier(jwt.SigningMethodRS256, key, issuer, audience), nil
}

// NewFromConfig picks the verifier matching the configured key.
func NewFromConfig(cfg config.IdentityConfig) (*Verifier, error) {
	if cfg.PublicKeyPEM != "" {
		return NewRSAVerifier(cfg.PublicKeyPEM, cfg.Issuer, cfg.Audience)
	}
	if cfg.HMACSecret == "" {
		return nil, errors.New("identity verifier requires a key")
	}
	return NewHMACVerifier(cfg.HMACSecret, cfg.Issuer, cfg.Audience), nil
}

func newVerifier(method jwt.SigningMethod, key any, issuer, audience string) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &Verifier{method: method, key: key, parser: jwt.NewParser(opts...)}
}

// Verify validates the signature and registered claims of tokenString and
// returns the asserted identity. Failures carry CodeAuthentication.
func (v *Verifier) Verify(tokenString string) (models.Identity, error) {
	claims := &Claims{}
	parsed, err := v.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != v.method.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Identity{}, dErrors.Wrap(err, dErrors.CodeAuthentication, "assertion has expired")
		}
		return models.Identity{}, dErrors.Wrap(err, dErrors.CodeAuthentication, "invalid assertion")
	}
	if !parsed.Valid {
		return models.Identity{}, dErrors.New(dErrors.CodeAuthentication, "invalid assertion")
	}

	return models.Identity{
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	}, nil
}
