// Package middleware provides HTTP middleware for the presentation layer.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/security"
)

const ownerIDKey = "ownerId"

// OwnerMiddleware authenticates the bearer token and stores its subject as the
// owner ID. Browsers cannot set headers on websocket upgrades, so a "token"
// query parameter is accepted as a fallback.
func OwnerMiddleware(jwtSecret string, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		marker := perfTracker.StartOperation("auth:owner_token", "unknown")
		defer perfTracker.CompleteOperation(marker)
		marker.AddMetadata("path", c.Request.URL.Path)
		marker.AddMetadata("method", c.Request.Method)

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			marker.SetError(errors.New("missing bearer token"))
			logger.Auth().Warn("Missing bearer token", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		ownerID, err := security.ValidateOwnerToken(token, jwtSecret)
		if err != nil {
			marker.SetError(err)
			logger.Auth().Warn("Rejected owner token", "path", c.Request.URL.Path, "error", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		marker.OwnerID = ownerID
		logger.Auth().Debug("Owner authenticated",
			"ownerId", logging.MaskOwnerID(ownerID), "duration", time.Since(start))

		c.Set(ownerIDKey, ownerID)
		c.Next()
	}
}

// GetOwnerID returns the authenticated owner ID set by OwnerMiddleware.
func GetOwnerID(c *gin.Context) (string, bool) {
	value, exists := c.Get(ownerIDKey)
	if !exists {
		return "", false
	}
	ownerID, ok := value.(string)
	return ownerID, ok && ownerID != ""
}

// RequestIDMiddleware tags each request with an ID, honouring X-Request-ID
// when the client sends one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = security.GenerateULID()
		}
		c.Header("X-Request-ID", requestID)
		ctx := context.WithValue(c.Request.Context(), logging.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
