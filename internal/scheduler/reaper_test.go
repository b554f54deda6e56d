package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErlanBelekov/todo-api/internal/domain"
	"github.com/ErlanBelekov/todo-api/internal/infrastructure/memory"
	"github.com/ErlanBelekov/todo-api/internal/metrics"
)

const testSchedule = "@every 5m"

type countingClearer struct {
	calls atomic.Int32
	err   error
}

func (c *countingClearer) ClearExpiredResetTokens(context.Context, time.Time) (int, error) {
	c.calls.Add(1)
	return 0, c.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewResetTokenReaper_RejectsBadSchedule(t *testing.T) {
	_, err := NewResetTokenReaper(&countingClearer{}, "every now and then", discardLogger())
	assert.Error(t, err)

	_, err = NewResetTokenReaper(&countingClearer{}, testSchedule, discardLogger())
	assert.NoError(t, err)
}

func TestRunOnce_ClearsOnlyExpiredPairs(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()
	now := time.Now()

	for _, email := range []string{"expired@example.com", "live@example.com"} {
		_, err := users.Create(ctx, &domain.User{Email: email, PasswordHash: "x"})
		require.NoError(t, err)
	}
	_, err := users.SetResetToken(ctx, "expired@example.com", "h1", now.Add(-time.Second))
	require.NoError(t, err)
	_, err = users.SetResetToken(ctx, "live@example.com", "h2", now.Add(time.Minute))
	require.NoError(t, err)

	r, err := NewResetTokenReaper(users, testSchedule, discardLogger())
	require.NoError(t, err)
	r.now = func() time.Time { return now }

	before := testutil.ToFloat64(metrics.ResetTokensClearedTotal)
	cleared, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cleared)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ResetTokensClearedTotal)-before)

	expired, _ := users.FindByEmail(ctx, "expired@example.com")
	assert.Nil(t, expired.ResetTokenHash)
	assert.Nil(t, expired.ResetTokenExpiresAt)

	live, _ := users.FindByEmail(ctx, "live@example.com")
	assert.True(t, live.HasResetToken())
}

func TestRunOnce_StoreError(t *testing.T) {
	storeErr := errors.New("db down")
	r, err := NewResetTokenReaper(&countingClearer{err: storeErr}, testSchedule, discardLogger())
	require.NoError(t, err)

	_, err = r.RunOnce(context.Background())
	assert.ErrorIs(t, err, storeErr)
}

func TestStart_RunsOnScheduleAndStopsOnCancel(t *testing.T) {
	clearer := &countingClearer{}
	// cron descriptors have one-second resolution.
	r, err := NewResetTokenReaper(clearer, "@every 1s", discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return clearer.calls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after cancel")
	}
}
