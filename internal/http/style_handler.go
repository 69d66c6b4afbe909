package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"style-ai/internal/domain"
	"style-ai/internal/service"
)

// StyleHandler expone el analizador de pedidos de estilo.
type StyleHandler struct {
	logger   *zap.Logger
	analyzer *service.StyleAnalyzer
}

// NewStyleHandler crea una instancia de StyleHandler con dependencias necesarias.
func NewStyleHandler(logger *zap.Logger, analyzer *service.StyleAnalyzer) *StyleHandler {
	return &StyleHandler{
		logger:   logger,
		analyzer: analyzer,
	}
}

// Analyze maneja POST /api/v1/style/analyze.
func (h *StyleHandler) Analyze(c *gin.Context) {
	var req struct {
		Text        string         `json:"text"`
		UserContext map[string]any `json:"userContext"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid style analyze request", zap.Error(err))
		c.JSON(http.StatusBadRequest, domain.Failure(domain.ErrorKindValidation, "invalid request body"))
		return
	}

	result := h.analyzer.Analyze(c.Request.Context(), domain.StyleRequest{
		Text:        req.Text,
		UserContext: req.UserContext,
	})
	if !result.IsSuccess() {
		h.logger.Info("style analyze failed",
			zap.String("request_id", c.GetString(requestIDHeader)),
			zap.String("error_kind", string(result.ErrorKind)),
		)
	}

	c.JSON(statusForResult(result), result)
}

func statusForResult(result domain.AnalysisResult) int {
	if result.IsSuccess() {
		return http.StatusOK
	}
	switch result.ErrorKind {
	case domain.ErrorKindValidation:
		return http.StatusBadRequest
	case domain.ErrorKindProvider, domain.ErrorKindParse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
