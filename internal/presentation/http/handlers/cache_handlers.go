package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/caching/manager"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/outfitstack-go/internal/presentation/http/middleware"
)

// CacheHandlers exposes the owner's cache statistics and invalidation.
type CacheHandlers struct {
	cacheManager *manager.Manager
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

func NewCacheHandlers(cacheManager *manager.Manager, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CacheHandlers {
	return &CacheHandlers{cacheManager: cacheManager, logger: logger, perfTracker: perfTracker}
}

// GetCacheStats returns hit/miss counters and sizes for the owner's cache
func (h *CacheHandlers) GetCacheStats(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)
	marker := h.perfTracker.StartOperation("cache:stats_request", ownerID)
	defer h.perfTracker.CompleteOperation(marker)

	c.JSON(http.StatusOK, gin.H{
		"cache":       h.cacheManager.GetOwnerStats(ownerID),
		"performance": h.perfTracker.TakeSnapshot(ownerID),
	})
}

// InvalidateCache drops every cached item and outfit of the owner
func (h *CacheHandlers) InvalidateCache(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)
	marker := h.perfTracker.StartOperation("cache:invalidate_request", ownerID)
	defer h.perfTracker.CompleteOperation(marker)

	h.cacheManager.InvalidateOwner(ownerID)
	h.logger.Cache().Info("Owner cache invalidated by request", "ownerId", ownerID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
