// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/outfitstack-go/internal/application/container"
	"github.com/AtRiskMedia/outfitstack-go/internal/presentation/http/handlers"
	"github.com/AtRiskMedia/outfitstack-go/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/outfitstack-go/pkg/config"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.CORSMiddleware(config.CORSOrigins))

	// Locally stored item images; absolute media URLs are served elsewhere.
	if strings.HasPrefix(config.MediaBaseURL, "/") {
		r.Static(config.MediaBaseURL, config.MediaPath)
	}

	// Initialize handlers
	healthHandlers := handlers.NewHealthHandlers(container)
	itemHandlers := handlers.NewItemHandlers(container.ItemService, container.ImageURLs, container.Logger, container.PerfTracker)
	outfitHandlers := handlers.NewOutfitHandlers(container.OutfitService, container.Logger, container.PerfTracker)
	cacheHandlers := handlers.NewCacheHandlers(container.CacheManager, container.Logger, container.PerfTracker)
	telemetryHandlers := handlers.NewTelemetryHandlers(container.Telemetry, config.CORSOrigins, container.Logger)

	r.GET("/health", healthHandlers.GetHealth)

	// API routes authenticated by owner token
	api := r.Group("/api/v1")
	api.Use(middleware.OwnerMiddleware(container.JWTSecret, container.Logger, container.PerfTracker))
	{
		items := api.Group("/items")
		{
			items.GET("", itemHandlers.GetAllItems)
			items.POST("", itemHandlers.CreateItem)
			items.POST("/batch", itemHandlers.GetItemsByIDs)
			items.GET("/:id", itemHandlers.GetItemByID)
			items.PUT("/:id", itemHandlers.UpdateItem)
			items.DELETE("/:id", itemHandlers.DeleteItem)
		}

		outfits := api.Group("/outfits")
		{
			outfits.GET("", outfitHandlers.GetAllOutfits)
			outfits.POST("", outfitHandlers.CreateOutfit)
			outfits.GET("/resolved", outfitHandlers.GetResolvedOutfits)
			outfits.POST("/resolve", outfitHandlers.ResolveOutfits)
			outfits.GET("/:id", outfitHandlers.GetResolvedOutfit)
			outfits.DELETE("/:id", outfitHandlers.DeleteOutfit)
		}

		cache := api.Group("/cache")
		{
			cache.GET("/stats", cacheHandlers.GetCacheStats)
			cache.DELETE("", cacheHandlers.InvalidateCache)
		}

		api.GET("/telemetry/stream", telemetryHandlers.Stream)
	}

	return r
}
