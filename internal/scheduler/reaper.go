package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ErlanBelekov/todo-api/internal/metrics"
)

type resetTokenClearer interface {
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int, error)
}

// ResetTokenReaper clears reset pairs whose expiry has passed, so a stale
// hash does not linger on the user until the next forgot-password request.
type ResetTokenReaper struct {
	users    resetTokenClearer
	schedule cron.Schedule
	logger   *slog.Logger
	now      func() time.Time
}

// NewResetTokenReaper accepts any standard cron expression or descriptor
// such as "@every 5m" or "*/10 * * * *".
func NewResetTokenReaper(users resetTokenClearer, expr string, logger *slog.Logger) (*ResetTokenReaper, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("parse reaper schedule %q: %w", expr, err)
	}
	return &ResetTokenReaper{
		users:    users,
		schedule: schedule,
		logger:   logger.With("component", "reset_token_reaper"),
		now:      time.Now,
	}, nil
}

// Start blocks until ctx is cancelled.
func (r *ResetTokenReaper) Start(ctx context.Context) {
	r.logger.Info("reaper started")

	for {
		now := r.now()
		timer := time.NewTimer(r.schedule.Next(now).Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			r.logger.Info("reaper shut down")
			return
		case <-timer.C:
			_, _ = r.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single cycle and reports how many pairs were cleared.
func (r *ResetTokenReaper) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() {
		metrics.ReaperCycleDuration.Observe(time.Since(start).Seconds())
	}()

	cleared, err := r.users.ClearExpiredResetTokens(ctx, r.now())
	if err != nil {
		r.logger.Error("clear expired reset tokens", "error", err)
		return 0, err
	}
	if cleared > 0 {
		metrics.ResetTokensClearedTotal.Add(float64(cleared))
		r.logger.Info("cleared expired reset tokens", "count", cleared)
	}
	return cleared, nil
}
