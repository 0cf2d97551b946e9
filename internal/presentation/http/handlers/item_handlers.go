package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/outfitstack-go/internal/application/services"
	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/outfitstack-go/internal/presentation/http/middleware"
)

// ItemIDsRequest represents the request body for bulk item loading
type ItemIDsRequest struct {
	ItemIDs []string `json:"itemIds" binding:"required"`
}

// ItemResponse is an item with its resolved image URL.
type ItemResponse struct {
	*wardrobe.Item
	ImageURL *string `json:"imageUrl"`
}

// ItemHandlers contains all item-related HTTP handlers
type ItemHandlers struct {
	itemService *services.ItemService
	urls        *media.URLResolver
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewItemHandlers creates item handlers with injected dependencies
func NewItemHandlers(itemService *services.ItemService, urls *media.URLResolver, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ItemHandlers {
	return &ItemHandlers{
		itemService: itemService,
		urls:        urls,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

func (h *ItemHandlers) present(items []*wardrobe.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ItemResponse{Item: item, ImageURL: h.urls.ResolveImageURL(item)})
	}
	return out
}

// GetAllItems returns the owner's items in the minimal projection
func (h *ItemHandlers) GetAllItems(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)
	start := time.Now()
	marker := h.perfTracker.StartOperation("items:list_request", ownerID)
	defer h.perfTracker.CompleteOperation(marker)

	items, err := h.itemService.List(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, marker, err)
		return
	}

	h.logger.Items().Info("Get all items request completed", "count", len(items), "duration", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"items": h.present(items),
		"count": len(items),
	})
}

// GetItemByID returns one detailed item
func (h *ItemHandlers) GetItemByID(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)
	marker := h.perfTracker.StartOperation("items:get_request", ownerID)
	defer h.perfTracker.CompleteOperation(marker)

	item, err := h.itemService.GetByID(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		respondError(c, marker, err)
		return
	}
	c.JSON(http.StatusOK, ItemResponse{Item: item, ImageURL: h.urls.ResolveImageURL(item)})
}

// GetItemsByIDs returns detailed items, cache-first with one batch fetch for the rest
func (h *ItemHandlers) GetItemsByIDs(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)
	start := time.Now()
	marker := h.perfTracker.StartOperation("items:batch_request", ownerID)
	defer h.perfTracker.CompleteOperation(marker)

	var req ItemIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	lookup, err := h.itemService.GetByIDs(c.Request.Context(), ownerID, req.ItemIDs)
	if err != nil {
		respondError(c, marker, err)
		return
	}
	marker.AddCacheStats(lookup.CacheHits, len(lookup.Items)+len(lookup.MissingIDs)-lookup.CacheHits)

	h.logger.Items().Info("Get items by IDs request completed",
		"requestedCount", len(req.ItemIDs), "foundCount", len(lookup.Items),
		"missingCount", len(lookup.MissingIDs), "duration", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"items":      h.present(lookup.Items),
		"missingIds": lookup.MissingIDs,
		"count":      len(lookup.Items),
	})
}

// CreateItem stores a new item, with an optional base64 image
func (h *ItemHandlers) CreateItem(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)
	marker := h.perfTracker.StartOperation("items:create_request", ownerID)
	defer h.perfTracker.CompleteOperation(marker)

	var req services.CreateItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	item, err := h.itemService.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		respondError(c, marker, err)
		return
	}
	c.JSON(http.StatusCreated, ItemResponse{Item: item, ImageURL: h.urls.ResolveImageURL(item)})
}

// UpdateItem changes name, type or colour of an item
func (h *ItemHandlers) UpdateItem(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)
	marker := h.perfTracker.StartOperation("items:update_request", ownerID)
	defer h.perfTracker.CompleteOperation(marker)

	var req services.UpdateItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	item, err := h.itemService.Update(c.Request.Context(), ownerID, c.Param("id"), req)
	if err != nil {
		respondError(c, marker, err)
		return
	}
	c.JSON(http.StatusOK, ItemResponse{Item: item, ImageURL: h.urls.ResolveImageURL(item)})
}

// DeleteItem removes an item and its images
func (h *ItemHandlers) DeleteItem(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)
	marker := h.perfTracker.StartOperation("items:delete_request", ownerID)
	defer h.perfTracker.CompleteOperation(marker)

	if err := h.itemService.Delete(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		respondError(c, marker, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": c.Param("id")})
}
