// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/outfitstack-go/internal/application/container"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/caching/cleanup"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/caching/manager"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/database"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/performance"
	persistence "github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/outfitstack-go/internal/presentation/http/server"
	"github.com/AtRiskMedia/outfitstack-go/pkg/config"
)

// Initialize performs the complete startup sequence and blocks until a
// shutdown signal arrives.
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[32m" + `
  outfitstack
` + "\033[97m" + `  made by At Risk Media
` + "\033[0m")

	// Step 1: Logging
	loggerConfig := logging.DefaultLoggerConfig()
	loggerConfig.OutputToFile = config.LogToFile
	loggerConfig.LogDirectory = config.LogDirectory
	loggerConfig.JSONFormat = config.LogJSON
	logger, err := logging.NewChanneledLogger(loggerConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()
	logger.Startup().Info("Channeled logging initialized", "toFile", config.LogToFile, "json", config.LogJSON)

	// Step 2: Auth secret
	if config.JWTSecret == "" {
		secret, err := security.GenerateSecureKey(64)
		if err != nil {
			return fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		config.JWTSecret = secret
		logger.Startup().Warn("JWT_SECRET is not set; using an ephemeral secret, issued tokens will not survive a restart")
	}

	// Step 3: Database and schema
	phaseStart := time.Now()
	db, err := persistence.Open(logger)
	if err != nil {
		logger.LogStartupPhase("database", time.Since(phaseStart), false, map[string]any{"error": err.Error()})
		return err
	}
	defer db.Close()

	tableCreator := database.NewTableCreator()
	if err := tableCreator.CreateSchema(db.DB); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if config.SeedDemoOwner != "" {
		seeded, err := tableCreator.SeedDemoWardrobe(db.DB, config.SeedDemoOwner)
		if err != nil {
			return fmt.Errorf("failed to seed demo wardrobe: %w", err)
		}
		if seeded {
			logger.Startup().Info("Demo wardrobe seeded", "ownerId", logging.MaskOwnerID(config.SeedDemoOwner))
		}
	}
	logger.LogStartupPhase("database", time.Since(phaseStart), true, map[string]any{"driver": db.Driver})

	// Step 4: Cache, tracker and dependency injection container
	cacheManager := manager.NewManager(logger)
	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig(), logger)
	appContainer := container.NewContainer(db.DB, cacheManager, logger, perfTracker)
	logger.Startup().Info("Dependency injection container created with singleton services")

	// Step 5: Background workers
	cleanupWorker := cleanup.NewWorker(cacheManager, cleanup.NewConfig(), logger)
	go cleanupWorker.Start(ctx)
	go appContainer.Telemetry.Run(ctx)
	logger.Startup().Info("Background workers started", "cleanupInterval", config.CacheCleanupInterval)

	// Step 6: HTTP server
	httpServer := server.New(config.Port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.Start()
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", config.Port)

	select {
	case <-gracefulShutdown:
		logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")
	case err := <-serverErrors:
		if err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
			return err
		}
	}

	shutdownStart := time.Now()
	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures gin and the standard logger used before the
// channeled logger exists.
func setupLogging() {
	if config.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
