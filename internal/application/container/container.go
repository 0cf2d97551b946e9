// Package container provides dependency injection for all singleton services
package container

import (
	"database/sql"
	"time"

	"github.com/AtRiskMedia/outfitstack-go/internal/application/resolution"
	"github.com/AtRiskMedia/outfitstack-go/internal/application/services"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/caching/manager"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/persistence/wardrobe"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/retry"
	"github.com/AtRiskMedia/outfitstack-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application Services
	ItemService   *services.ItemService
	OutfitService *services.OutfitService

	// Resolution pipeline
	BatchFetcher *resolution.BatchFetcher
	Orchestrator *resolution.Orchestrator
	Telemetry    *messaging.TelemetryBroadcaster

	// Infrastructure Dependencies
	DB           *sql.DB
	CacheManager *manager.Manager
	ImageURLs    *media.URLResolver
	Images       *media.ImageProcessor
	Logger       *logging.ChanneledLogger
	PerfTracker  *performance.Tracker
	JWTSecret    string
	StartedAt    time.Time
}

// NewContainer creates and wires all singleton services
func NewContainer(db *sql.DB, cacheManager *manager.Manager, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *Container {
	itemRepo := wardrobe.NewItemRepository(db, cacheManager, logger)
	outfitRepo := wardrobe.NewOutfitRepository(db, cacheManager, logger)

	urls := media.NewURLResolver(config.MediaBaseURL)
	images := media.NewImageProcessor(config.MediaPath, logger)

	policy := retry.Policy{
		MaxAttempts: config.RetryMaxAttempts,
		BaseDelay:   config.RetryBaseDelay,
		MaxDelay:    config.RetryMaxDelay,
		Jitter:      0.5,
	}
	fetcher := resolution.NewBatchFetcher(itemRepo, policy, config.MaxBatchSize, logger)
	sink := resolution.NewCacheSink(cacheManager, logger)

	broadcaster := messaging.NewTelemetryBroadcaster(config.TelemetryBufferSize, logger)
	telemetry := resolution.MultiSink{resolution.NewLogSink(logger), broadcaster}

	orchestrator := resolution.NewOrchestrator(
		resolution.NewResolver(resolution.NewViewModelBuilder(urls)),
		fetcher, sink, telemetry, config.HighMissingRateThreshold, logger)

	return &Container{
		ItemService:   services.NewItemService(itemRepo, cacheManager, fetcher, sink, images, logger),
		OutfitService: services.NewOutfitService(outfitRepo, orchestrator, cacheManager, logger),

		BatchFetcher: fetcher,
		Orchestrator: orchestrator,
		Telemetry:    broadcaster,

		DB:           db,
		CacheManager: cacheManager,
		ImageURLs:    urls,
		Images:       images,
		Logger:       logger,
		PerfTracker:  perfTracker,
		JWTSecret:    config.JWTSecret,
		StartedAt:    time.Now(),
	}
}
