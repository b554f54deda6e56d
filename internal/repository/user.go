package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/todo-api/internal/domain"
)

// UserRepository is the credential store. Emails passed in are already
// normalized. Every mutating method is a single-document write so the store's
// own atomicity is all the coordination the workflows rely on.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) (*domain.User, error)

	// SetResetToken stores the hashed reset token and its expiry on the user
	// with the given email. Returns domain.ErrUserNotFound when none matches.
	SetResetToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) (*domain.User, error)
	// FindByResetToken returns the user holding tokenHash with an expiry after now.
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)
	// ConsumeResetToken sets the new password hash and clears both reset
	// fields, but only while tokenHash is still stored and unexpired.
	// Returns domain.ErrResetTokenInvalid otherwise.
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*domain.User, error)
	// ClearExpiredResetTokens drops reset pairs whose expiry is not after now.
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int, error)
}
