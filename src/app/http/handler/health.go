// Package handler contains HTTP handlers for the API.
// Handlers parse requests, call use cases and convert results to responses.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gussgame/src/core/usecase"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	healthService *usecase.HealthService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(healthService *usecase.HealthService) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

// HealthResponse is the response for the liveness endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// Health reports liveness only.
// GET /health, GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// DetailedHealth checks every component and answers 503 when one is down.
// GET /health/detailed
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	status := h.healthService.Check(c.Request.Context())
	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
