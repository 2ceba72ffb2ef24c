// Package scheduler runs periodic maintenance inside the API process.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"taskboard/config"
	"taskboard/internal/delivery"
	"taskboard/internal/domain/lifecycle"
	"taskboard/internal/usecase"

	"go.uber.org/fx"
)

// sessionJanitor periodically removes expired refresh records.
type sessionJanitor struct {
	sessions usecase.SessionUsecase
	interval time.Duration
	logger   *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// JanitorParams holds dependencies for the session janitor, injected by Fx.
type JanitorParams struct {
	fx.In

	Lc       fx.Lifecycle
	Cfg      *config.Config
	Logger   *slog.Logger
	Sessions usecase.SessionUsecase
}

// NewSessionJanitor creates the janitor. A non-positive auth.cleanupInterval disables it.
func NewSessionJanitor(params JanitorParams) delivery.Delivery {
	j := newSessionJanitor(params.Sessions, params.Cfg.Auth.CleanupInterval, params.Logger)

	params.Lc.Append(fx.Hook{
		OnStop: j.stop,
	})

	return j
}

func newSessionJanitor(sessions usecase.SessionUsecase, interval time.Duration, logger *slog.Logger) *sessionJanitor {
	return &sessionJanitor{
		sessions: sessions,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Serve blocks, sweeping once per interval, until ctx is cancelled or the janitor is stopped.
func (j *sessionJanitor) Serve(ctx context.Context) error {
	defer close(j.doneCh)

	if j.interval <= 0 {
		j.logger.Info("Session janitor disabled")

		return nil
	}

	j.logger.Info("Starting session janitor", slog.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-j.stopCh:
			return nil
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *sessionJanitor) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	removed, err := j.sessions.CleanupExpiredSessions(sweepCtx)
	if err != nil {
		j.logger.Error("Session cleanup failed", slog.Any("error", err))

		return
	}

	j.logger.Debug("Session cleanup finished", slog.Int64("removed", removed))
}

func (j *sessionJanitor) stop(ctx context.Context) error {
	j.stopOnce.Do(func() { close(j.stopCh) })

	select {
	case <-j.doneCh:
	case <-ctx.Done():
	}

	j.logger.Info("Session janitor stopped")

	return nil
}
