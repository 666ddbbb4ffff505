package http

import (
	"net/http"

	"github.com/chatpipe/chatpipe/internal/classify"
	"github.com/chatpipe/chatpipe/internal/infrastructure/tracing"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClassifyRequest is the inbound classification request.
type ClassifyRequest struct {
	Text string `json:"text"`
}

// ClassifierHandlers contains the classification service's HTTP handlers.
type ClassifierHandlers struct {
	analyze Caller
	tracer  *tracing.Tracer
	logger  *zap.Logger
}

// NewClassifierHandlers creates the classifier handler set.
func NewClassifierHandlers(analyze Caller, tracer *tracing.Tracer, logger *zap.Logger) *ClassifierHandlers {
	return &ClassifierHandlers{
		analyze: analyze,
		tracer:  tracer,
		logger:  logger,
	}
}

// Classify handles POST /classify: analyze downstream, then bucket the
// result by length.
func (h *ClassifierHandlers) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}

	h.logger.Info("classify request received", zap.Int("text_length", len(req.Text)))

	analysis, err := h.analyze.Post(c.Request.Context(), "/analyze", map[string]string{"text": req.Text})
	if err != nil {
		h.logger.Error("analyze call failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"detail": "Analyze service unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"classification": classify.FromAnalysis(analysis),
		"analysis":       analysis,
	})
}

// Healthz handles GET /healthz.
func (h *ClassifierHandlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
