package domain_test

import (
	"testing"
	"time"

	"github.com/ErlanBelekov/todo-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"User@Example.com":      "user@example.com",
		"us/er@exa/mple.com":    "user@example.com",
		"  USER@EXAMPLE.COM  ":  "user@example.com",
		"//U/s/E/r@Example.COM": "user@example.com",
	}
	for in, want := range cases {
		assert.Equal(t, want, domain.NormalizeEmail(in), "input %q", in)
	}
}

func TestNormalizeEmail_Idempotent(t *testing.T) {
	for _, in := range []string{"A/b@C.d", "plain@example.com", "x//Y@z"} {
		once := domain.NormalizeEmail(in)
		assert.Equal(t, once, domain.NormalizeEmail(once))
	}
}

func TestUser_HasResetToken(t *testing.T) {
	hash := "abc"
	exp := time.Now().Add(time.Minute)

	assert.False(t, (&domain.User{}).HasResetToken())
	assert.False(t, (&domain.User{ResetTokenHash: &hash}).HasResetToken())
	assert.True(t, (&domain.User{ResetTokenHash: &hash, ResetTokenExpiresAt: &exp}).HasResetToken())
}
