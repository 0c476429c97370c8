package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, has a bad
	// signature, or carries unexpected claims.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token's signature is valid but its
	// expiry has passed.
	ErrExpiredToken = errors.New("token expired")
	// ErrInvalidSigningKey is returned when the signing secret is missing or unusable.
	ErrInvalidSigningKey = errors.New("invalid signing key")
)

// AccessClaims holds JWT claims for the access token. Scope carries the
// bearer's role authority (e.g. "ROLE_USER").
type AccessClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// TokenProvider issues and verifies HS256-signed access tokens. Verification
// is a pure function of the token and the signing secret; no storage lookup.
type TokenProvider struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	now       func() time.Time
}

// NewTokenProvider returns a TokenProvider signing with the given shared
// secret. Returns ErrInvalidSigningKey when the secret is empty.
func NewTokenProvider(secret []byte, issuer string, accessTTL time.Duration) (*TokenProvider, error) {
	if len(secret) == 0 {
		return nil, ErrInvalidSigningKey
	}
	return &TokenProvider{
		secret:    secret,
		issuer:    issuer,
		accessTTL: accessTTL,
		now:       time.Now,
	}, nil
}

// WithClock overrides the provider's clock. Intended for tests.
func (p *TokenProvider) WithClock(now func() time.Time) *TokenProvider {
	p.now = now
	return p
}

// Issue signs an access token for subject with the given scope claim.
// Expiry is deterministic: now + configured TTL. Returns the token string and
// its expiration time.
func (p *TokenProvider) Issue(subject, scope string) (token string, expiresAt time.Time, err error) {
	now := p.now().UTC()
	expiresAt = now.Add(p.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Scope: scope,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, ErrInvalidSigningKey
	}
	return token, expiresAt, nil
}

// Verify parses and validates an access token (signature, exp, iss).
// Returns the subject, scope, and expiry. Fails with ErrExpiredToken when the
// signature is valid but the token has expired, ErrInvalidToken otherwise.
func (p *TokenProvider) Verify(tokenString string) (subject, scope string, expiresAt time.Time, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", time.Time{}, ErrExpiredToken
		}
		return "", "", time.Time{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return "", "", time.Time{}, ErrInvalidToken
	}
	if claims.Issuer != p.issuer {
		return "", "", time.Time{}, ErrInvalidToken
	}
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return claims.Subject, claims.Scope, expiresAt, nil
}
