package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// IdleSweeper removes sessions that have been idle longer than a TTL
type IdleSweeper interface {
	SweepIdle(ttl time.Duration) []string
}

// StartSessionSweeper starts the worker that closes abandoned page sessions
func StartSessionSweeper(ctx context.Context, sweeper IdleSweeper, interval, ttl time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := sweeper.SweepIdle(ttl); len(removed) > 0 {
					logger.Debug("session sweeper: removed idle sessions", zap.Strings("ids", removed))
				}
			}
		}
	}()

	logger.Info("session sweeper started", zap.Duration("interval", interval), zap.Duration("ttl", ttl))
}
