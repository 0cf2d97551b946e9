// Package handlers provides the HTTP handlers of the outfit API
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/outfitstack-go/internal/application/resolution"
	"github.com/AtRiskMedia/outfitstack-go/internal/application/services"
	"github.com/AtRiskMedia/outfitstack-go/internal/domain/repositories"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/performance"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	if errors.Is(err, services.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return http.StatusNotFound
	}
	var fe *resolution.FetchError
	if errors.As(err, &fe) {
		switch fe.Code {
		case resolution.ErrorValidation:
			return http.StatusBadRequest
		case resolution.ErrorNetwork:
			return http.StatusServiceUnavailable
		case resolution.ErrorServer, resolution.ErrorAuth:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, marker *performance.Marker, err error) {
	marker.SetError(err)
	status := statusFor(err)
	body := gin.H{"error": err.Error()}
	var fe *resolution.FetchError
	if errors.As(err, &fe) {
		body["code"] = string(fe.Code)
	}
	c.JSON(status, body)
}
