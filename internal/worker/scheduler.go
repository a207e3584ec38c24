package worker

import (
	"context"

	"atlas/internal/config"
	"atlas/internal/service/detail"

	"go.uber.org/zap"
)

// StartAllWorkers starts every background worker. They stop when ctx is done.
func StartAllWorkers(ctx context.Context, cfg config.Config, registry *detail.Registry, logger *zap.Logger) {
	logger.Info("starting all workers")

	StartSessionSweeper(ctx, registry, config.SessionSweepInterval, cfg.SessionTTL, logger)
	StartMemoryReporter(ctx, config.MemoryReportInterval, logger)

	logger.Info("all workers started")
}
