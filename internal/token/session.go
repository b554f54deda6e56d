package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultSessionTTL = 30 * 24 * time.Hour

var (
	ErrSigningKey   = errors.New("session signing key is not configured")
	ErrInvalidToken = errors.New("session token is invalid")
	ErrExpiredToken = errors.New("session token has expired")
)

// Session issues and verifies HS256 session tokens whose only claims are
// the subject user id and the expiry.
type Session struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

type SessionOption func(*Session)

// WithClock overrides time.Now for issuance and expiry checks.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

func NewSession(key []byte, opts ...SessionOption) *Session {
	s := &Session{key: key, ttl: DefaultSessionTTL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Issue(userID string) (string, error) {
	if len(s.key) == 0 {
		return "", ErrSigningKey
	}

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(s.now().Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify decodes the token, checks the signature and then the expiry, and
// returns the subject. Every failure is ErrInvalidToken except a correctly
// signed token past its expiry, which is ErrExpiredToken.
func (s *Session) Verify(raw string) (string, error) {
	if len(s.key) == 0 {
		return "", ErrSigningKey
	}

	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	if !tok.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
