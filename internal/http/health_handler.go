package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"style-ai/internal/service"
)

// HealthHandler expone el estado del servicio para monitoreo.
type HealthHandler struct {
	logger *zap.Logger
	health *service.HealthService
}

func NewHealthHandler(logger *zap.Logger, health *service.HealthService) *HealthHandler {
	return &HealthHandler{logger: logger, health: health}
}

// Root maneja GET /.
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "StyleAI API is running",
		"version": h.health.Version(),
		"status":  "healthy",
	})
}

// Health maneja GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	report := h.health.Check(c.Request.Context())
	if report.Status != "healthy" {
		h.logger.Warn("health check failed", zap.Any("dependencies", report.Dependencies))
		c.JSON(http.StatusServiceUnavailable, report)
		return
	}
	c.JSON(http.StatusOK, report)
}
