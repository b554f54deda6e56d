package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/ErlanBelekov/todo-api/internal/domain"
	"github.com/ErlanBelekov/todo-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()

	u, err := repo.Create(ctx, &domain.User{Email: "a@example.com", Name: "A", PasswordHash: "h"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	_, err = repo.Create(ctx, &domain.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()

	u, err := repo.Create(ctx, &domain.User{Email: "a@example.com", Name: "A"})
	require.NoError(t, err)
	u.Name = "mutated"

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
}

func TestUserRepository_ResetTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()
	now := time.Now()

	_, err := repo.Create(ctx, &domain.User{Email: "a@example.com", PasswordHash: "old"})
	require.NoError(t, err)

	_, err = repo.SetResetToken(ctx, "missing@example.com", "hash", now.Add(time.Minute))
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.SetResetToken(ctx, "a@example.com", "hash", now.Add(time.Minute))
	require.NoError(t, err)

	found, err := repo.FindByResetToken(ctx, "hash", now)
	require.NoError(t, err)
	assert.True(t, found.HasResetToken())

	_, err = repo.FindByResetToken(ctx, "hash", now.Add(2*time.Minute))
	assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)

	consumed, err := repo.ConsumeResetToken(ctx, "hash", "new", now)
	require.NoError(t, err)
	assert.Equal(t, "new", consumed.PasswordHash)
	assert.Nil(t, consumed.ResetTokenHash)
	assert.Nil(t, consumed.ResetTokenExpiresAt)

	_, err = repo.ConsumeResetToken(ctx, "hash", "again", now)
	assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
}

func TestUserRepository_ClearExpiredResetTokens(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()
	now := time.Now()

	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := repo.Create(ctx, &domain.User{Email: email})
		require.NoError(t, err)
	}
	_, err := repo.SetResetToken(ctx, "a@example.com", "expired", now.Add(-time.Second))
	require.NoError(t, err)
	_, err = repo.SetResetToken(ctx, "b@example.com", "live", now.Add(time.Minute))
	require.NoError(t, err)

	n, err := repo.ClearExpiredResetTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	a, _ := repo.FindByEmail(ctx, "a@example.com")
	assert.Nil(t, a.ResetTokenHash)
	assert.Nil(t, a.ResetTokenExpiresAt)

	b, _ := repo.FindByEmail(ctx, "b@example.com")
	assert.True(t, b.HasResetToken())
}

func TestUserRepository_UpdateProfileEmailConflict(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()

	a, _ := repo.Create(ctx, &domain.User{Email: "a@example.com"})
	_, _ = repo.Create(ctx, &domain.User{Email: "b@example.com"})

	taken := "b@example.com"
	_, err := repo.UpdateProfile(ctx, a.ID, domain.ProfileUpdate{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	same := "a@example.com"
	_, err = repo.UpdateProfile(ctx, a.ID, domain.ProfileUpdate{Email: &same})
	assert.NoError(t, err)
}
