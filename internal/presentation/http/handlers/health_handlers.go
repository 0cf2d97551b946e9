package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/outfitstack-go/internal/application/container"
)

// HealthHandlers reports process, database and cache health.
type HealthHandlers struct {
	container *container.Container
}

func NewHealthHandlers(container *container.Container) *HealthHandlers {
	return &HealthHandlers{container: container}
}

// GetHealth answers 200 when the database is reachable and 503 otherwise
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	database := "ok"
	if err := h.container.DB.PingContext(ctx); err != nil {
		status = http.StatusServiceUnavailable
		database = err.Error()
	}

	c.JSON(status, gin.H{
		"status":      http.StatusText(status),
		"database":    database,
		"cache":       h.container.CacheManager.Health(),
		"performance": h.container.PerfTracker.GetOverallStats(),
		"uptime":      time.Since(h.container.StartedAt).Round(time.Second).String(),
	})
}
