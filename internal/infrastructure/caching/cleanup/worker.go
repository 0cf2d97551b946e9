// Package cleanup provides background worker
package cleanup

import (
	"context"
	"time"

	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/caching/interfaces"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
)

// Worker handles background cache cleanup operations
type Worker struct {
	cache    interfaces.Cache
	config   *Config
	logger   *logging.ChanneledLogger
	reporter *Reporter
}

// NewWorker creates a new cleanup worker with injected configuration
func NewWorker(cache interfaces.Cache, config *Config, logger *logging.ChanneledLogger) *Worker {
	if config == nil {
		config = NewConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Worker{
		cache:    cache,
		config:   config,
		logger:   logger,
		reporter: NewReporter(cache),
	}
}

// Start begins the cleanup worker routine, using the configured interval
func (w *Worker) Start(ctx context.Context) {
	if w.config.CleanupInterval <= 0 {
		w.logger.Cache().Warn("Cache cleanup worker disabled", "interval", w.config.CleanupInterval)
		return
	}
	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	w.logger.Cache().Info("Cache cleanup worker started",
		"interval", w.config.CleanupInterval, "verbose", w.config.VerboseReporting)

	for {
		select {
		case <-ctx.Done():
			w.logger.Cache().Info("Cache cleanup worker stopping")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce purges expired items for every owner, then drops idle owners.
// It returns the number of item entries and owners removed.
func (w *Worker) RunOnce(ctx context.Context) (items int, owners int) {
	start := time.Now()
	ownerIDs := w.cache.GetAllOwnerIDs()

	if w.config.VerboseReporting {
		w.reporter.LogStage("PERIODIC CACHE CLEANUP")
		for _, ownerID := range ownerIDs {
			w.reporter.Print(w.reporter.GenerateOwnerReport(ownerID))
		}
	}

	for _, ownerID := range ownerIDs {
		select {
		case <-ctx.Done():
			return items, owners
		default:
			items += w.cache.PurgeExpired(ownerID)
		}
	}
	owners = len(w.cache.RemoveIdleOwners(w.config.OwnerIdleTimeout))

	duration := time.Since(start)
	if items > 0 || owners > 0 {
		w.logger.Cache().Info("Cache cleanup finished",
			"itemsRemoved", items, "ownersRemoved", owners, "owners", len(ownerIDs), "duration", duration)
		if w.config.VerboseReporting {
			w.reporter.LogSuccess("Cache cleanup finished: %d items and %d idle owners removed in %v", items, owners, duration)
		}
	} else if w.config.VerboseReporting {
		w.reporter.LogInfo("Cache cleanup completed - nothing expired (%v)", duration)
	}
	return items, owners
}
