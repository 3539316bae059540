package auth

import (
	"context"
	"log/slog"
	"time"
)

// SessionCleaner removes expired handoff sessions.
type SessionCleaner interface {
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// SessionSweeper periodically removes abandoned handoff sessions.
type SessionSweeper struct {
	cleaner  SessionCleaner
	interval time.Duration
	logger   *slog.Logger
}

// NewSessionSweeper creates a sweeper running every interval.
func NewSessionSweeper(cleaner SessionCleaner, interval time.Duration, logger *slog.Logger) *SessionSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionSweeper{cleaner: cleaner, interval: interval, logger: logger}
}

// Run sweeps until ctx is cancelled.
func (s *SessionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *SessionSweeper) sweep(ctx context.Context) {
	removed, err := s.cleaner.CleanupExpiredSessions(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("session cleanup failed", "error", err)
		}
		return
	}
	if removed > 0 {
		s.logger.Info("expired sessions removed", "count", removed)
	}
}
