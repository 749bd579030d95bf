package jwtx

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrNoSubject   = errors.New("jwtx: missing subject")
)

// HS256 signs and verifies tokens with a single HMAC-SHA256 secret. The
// access and refresh token classes each get their own instance so the two
// secrets and lifetimes stay independent.
type HS256 struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewHS256 builds a signer/verifier around the given secret.
func NewHS256(secret, issuer string, ttl time.Duration) (*HS256, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwtx: secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return &HS256{secret: []byte(secret), issuer: issuer, ttl: ttl}, nil
}

// TTL returns the configured token lifetime.
func (s *HS256) TTL() time.Duration { return s.ttl }

// Issuer returns the configured issuer claim value.
func (s *HS256) Issuer() string { return s.issuer }

// Sign produces a compact serialized token for the given claims.
func (s *HS256) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token, returning its claims. Failures map to
// the package sentinel errors so callers can log a sub-reason while exposing
// a uniform external status.
func (s *HS256) Verify(raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSig
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return Claims{}, ErrNotYetValid
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		default:
			return Claims{}, ErrMalformed
		}
	}
	if !token.Valid {
		return Claims{}, ErrMalformed
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return Claims{}, ErrIssuer
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, ErrNoSubject
	}

	return claims, nil
}
