package schemastore

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Sokol111/eventsourcing-commons/pkg/core/logger"
)

// cacheRefresher periodically re-reads the full schema catalog so that
// fingerprints registered by other writers become resolvable without waiting
// for a miss. With a nil store or a non-positive interval it does nothing,
// which is how the in-memory mode runs.
type cacheRefresher struct {
	store     Store
	interval  time.Duration
	log       *zap.Logger
	throttler *logger.LogThrottler
}

func newCacheRefresher(store Store, interval time.Duration, log *zap.Logger) *cacheRefresher {
	return &cacheRefresher{
		store:     store,
		interval:  interval,
		log:       log,
		throttler: logger.NewLogThrottler(log, 0),
	}
}

func (r *cacheRefresher) Run(ctx context.Context) error {
	if r.store == nil || r.interval <= 0 {
		r.log.Info("schema cache refresh disabled")
		return nil
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := r.store.Schemas(ctx); err != nil {
				r.throttler.Warn("schema-cache-refresh", "failed to refresh schema cache", zap.Error(err))
			}
		}
	}
}
