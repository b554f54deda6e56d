package token_test

import (
	"testing"
	"time"

	"github.com/ErlanBelekov/todo-api/internal/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "token-test-secret-at-least-32-chars"

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func TestSession_IssueVerify_RoundTrip(t *testing.T) {
	s := token.NewSession([]byte(testKey))

	raw, err := s.Issue("user-1")
	require.NoError(t, err)

	sub, err := s.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestSession_OnlySubjectAndExpiryClaims(t *testing.T) {
	s := token.NewSession([]byte(testKey))
	raw, err := s.Issue("user-1")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(raw, claims)
	require.NoError(t, err)

	assert.Len(t, claims, 2)
	assert.Contains(t, claims, "sub")
	assert.Contains(t, claims, "exp")
}

func TestSession_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := &clock{t: issuedAt}
	s := token.NewSession([]byte(testKey), token.WithClock(c.Now))

	raw, err := s.Issue("user-1")
	require.NoError(t, err)

	c.t = issuedAt.Add(29 * 24 * time.Hour)
	sub, err := s.Verify(raw)
	require.NoError(t, err, "token must be valid 29 days after issuance")
	assert.Equal(t, "user-1", sub)

	c.t = issuedAt.Add(31 * 24 * time.Hour)
	_, err = s.Verify(raw)
	assert.ErrorIs(t, err, token.ErrExpiredToken)
}

func TestSession_WrongKey_Invalid(t *testing.T) {
	raw, err := token.NewSession([]byte("another-secret-that-is-32-chars!!")).Issue("user-1")
	require.NoError(t, err)

	_, err = token.NewSession([]byte(testKey)).Verify(raw)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestSession_Malformed_Invalid(t *testing.T) {
	_, err := token.NewSession([]byte(testKey)).Verify("not.a.jwt")
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestSession_MissingExpiry_Invalid(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"}).
		SignedString([]byte(testKey))
	require.NoError(t, err)

	_, err = token.NewSession([]byte(testKey)).Verify(raw)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestSession_NoneAlgorithm_Invalid(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = token.NewSession([]byte(testKey)).Verify(raw)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestSession_EmptyKey_SigningError(t *testing.T) {
	_, err := token.NewSession(nil).Issue("user-1")
	assert.ErrorIs(t, err, token.ErrSigningKey)
}
