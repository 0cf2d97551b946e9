package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/outfitstack-go/internal/application/resolution"
	"github.com/AtRiskMedia/outfitstack-go/internal/application/services"
	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/outfitstack-go/internal/presentation/http/middleware"
)

// ResolveRequest carries ad-hoc outfits to resolve. Enabled defaults to true.
type ResolveRequest struct {
	Outfits []*wardrobe.OutfitSuggestion `json:"outfits"`
	Enabled *bool                        `json:"enabled"`
}

// OutfitHandlers contains all outfit-related HTTP handlers
type OutfitHandlers struct {
	outfitService *services.OutfitService
	logger        *logging.ChanneledLogger
	perfTracker   *performance.Tracker
}

// NewOutfitHandlers creates outfit handlers with injected dependencies
func NewOutfitHandlers(outfitService *services.OutfitService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *OutfitHandlers {
	return &OutfitHandlers{
		outfitService: outfitService,
		logger:        logger,
		perfTracker:   perfTracker,
	}
}

// GetAllOutfits returns the stored suggestions with their raw item ID lists
func (h *OutfitHandlers) GetAllOutfits(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)
	marker := h.perfTracker.StartOperation("outfits:list_request", ownerID)
	defer h.perfTracker.CompleteOperation(marker)

	outfits, err := h.outfitService.List(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, marker, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outfits": outfits, "count": len(outfits)})
}

// CreateOutfit stores a suggestion
func (h *OutfitHandlers) CreateOutfit(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)
	marker := h.perfTracker.StartOperation("outfits:create_request", ownerID)
	defer h.perfTracker.CompleteOperation(marker)

	var req services.CreateOutfitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	outfit, err := h.outfitService.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		respondError(c, marker, err)
		return
	}
	c.JSON(http.StatusCreated, outfit)
}

// DeleteOutfit removes a suggestion
func (h *OutfitHandlers) DeleteOutfit(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)
	marker := h.perfTracker.StartOperation("outfits:delete_request", ownerID)
	defer h.perfTracker.CompleteOperation(marker)

	if err := h.outfitService.Delete(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		respondError(c, marker, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": c.Param("id")})
}

// GetResolvedOutfits resolves every stored suggestion of the owner
func (h *OutfitHandlers) GetResolvedOutfits(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)
	marker := h.perfTracker.StartOperation("outfits:resolve_stored_request", ownerID)
	defer h.perfTracker.CompleteOperation(marker)

	enabled, ok := enabledParam(c, marker)
	if !ok {
		return
	}

	result, err := h.outfitService.ResolveStored(c.Request.Context(), ownerID, enabled)
	if err != nil {
		respondError(c, marker, err)
		return
	}
	h.respondResult(c, marker, ownerID, result)
}

// GetResolvedOutfit returns one stored suggestion with its resolved items
func (h *OutfitHandlers) GetResolvedOutfit(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)
	marker := h.perfTracker.StartOperation("outfits:resolve_one_request", ownerID)
	defer h.perfTracker.CompleteOperation(marker)

	enabled, ok := enabledParam(c, marker)
	if !ok {
		return
	}

	outfit, result, err := h.outfitService.ResolveOne(c.Request.Context(), ownerID, c.Param("id"), enabled)
	if err != nil {
		respondError(c, marker, err)
		return
	}
	h.recordResult(marker, ownerID, result)
	c.JSON(http.StatusOK, gin.H{"outfit": outfit, "resolution": result})
}

// ResolveOutfits resolves caller-supplied suggestions
func (h *OutfitHandlers) ResolveOutfits(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)
	marker := h.perfTracker.StartOperation("outfits:resolve_request", ownerID)
	defer h.perfTracker.CompleteOperation(marker)

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	enabled := req.Enabled == nil || *req.Enabled

	result, err := h.outfitService.ResolveOutfits(c.Request.Context(), ownerID, req.Outfits, enabled)
	if err != nil {
		respondError(c, marker, err)
		return
	}
	h.respondResult(c, marker, ownerID, result)
}

// respondResult always answers 200: fetch failures travel inside the result
// next to whatever the cache could resolve.
func (h *OutfitHandlers) respondResult(c *gin.Context, marker *performance.Marker, ownerID string, result resolution.Result) {
	h.recordResult(marker, ownerID, result)
	c.JSON(http.StatusOK, result)
}

func (h *OutfitHandlers) recordResult(marker *performance.Marker, ownerID string, result resolution.Result) {
	marker.AddMetadata("resolved", result.ResolvedCount)
	marker.AddMetadata("missing", result.MissingCount)
	if result.IsError {
		marker.SetSuccess(false)
		marker.Error = result.ErrorMessage
	}
	h.logger.Perf().Info("Performance for resolve request",
		"operation", marker.Operation, "ownerId", ownerID,
		"duration", time.Since(marker.StartTime), "resolved", result.ResolvedCount,
		"missing", result.MissingCount, "isError", result.IsError)
}

// enabledParam reads the optional ?enabled= flag, answering 400 when it does
// not parse.
func enabledParam(c *gin.Context, marker *performance.Marker) (bool, bool) {
	raw := c.Query("enabled")
	if raw == "" {
		return true, true
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "enabled must be true or false"})
		return false, false
	}
	return enabled, true
}
