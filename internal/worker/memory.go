package worker

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// StartMemoryReporter periodically logs runtime memory statistics
func StartMemoryReporter(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				var m runtime.MemStats
				runtime.ReadMemStats(&m)
				logger.Info("memory stats",
					zap.Uint64("alloc_mib", m.Alloc/1024/1024),
					zap.Uint64("total_alloc_mib", m.TotalAlloc/1024/1024),
					zap.Uint64("sys_mib", m.Sys/1024/1024),
					zap.Uint32("num_gc", m.NumGC),
				)
			}
		}
	}()
}
