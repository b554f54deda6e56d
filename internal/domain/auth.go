package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user with given email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrResetTokenInvalid  = errors.New("password reset token is invalid or has expired")
	ErrInvalidInput       = errors.New("invalid input")
)

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string

	// Both set or both nil.
	ResetTokenHash      *string
	ResetTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasResetToken reports whether a reset pair is currently stored.
func (u *User) HasResetToken() bool {
	return u.ResetTokenHash != nil && u.ResetTokenExpiresAt != nil
}

// ProfileUpdate is the allow-list of user fields a caller may change.
// Nil means "leave as is".
type ProfileUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Email == nil && p.PasswordHash == nil
}

// NormalizeEmail lowercases the address and strips every "/" so that
// variants map onto one stored key. Applied before any lookup or write.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(email, "/", "")))
}
