package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/chatpipe/chatpipe/internal/infrastructure/tracing"
	"github.com/chatpipe/chatpipe/internal/queue"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Stream shape: five fixed chunks, half a second apart.
const (
	streamChunks       = 5
	defaultStreamDelay = 500 * time.Millisecond
)

// JobPublisher publishes a chat job to the queue.
type JobPublisher interface {
	Publish(ctx context.Context, job queue.Job) error
	Queue() string
}

// Caller performs a downstream JSON POST.
type Caller interface {
	Post(ctx context.Context, path string, body interface{}) (map[string]interface{}, error)
}

// ChatRequest is the inbound chat message.
type ChatRequest struct {
	Message string `json:"message"`
}

// GatewayHandlers contains the gateway's HTTP handlers.
type GatewayHandlers struct {
	publisher   JobPublisher
	nlp         Caller
	tracer      *tracing.Tracer
	logger      *zap.Logger
	streamDelay time.Duration
}

// NewGatewayHandlers creates the gateway handler set.
func NewGatewayHandlers(publisher JobPublisher, nlp Caller, tracer *tracing.Tracer, logger *zap.Logger) *GatewayHandlers {
	return &GatewayHandlers{
		publisher:   publisher,
		nlp:         nlp,
		tracer:      tracer,
		logger:      logger,
		streamDelay: defaultStreamDelay,
	}
}

// WithStreamDelay overrides the chunk spacing. Used by tests.
func (h *GatewayHandlers) WithStreamDelay(delay time.Duration) *GatewayHandlers {
	h.streamDelay = delay
	return h
}

// Chat handles POST /chat: publish the job, then call the classification
// service, strictly in that order.
func (h *GatewayHandlers) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}

	h.logger.Info("received chat request", zap.Int("message_length", len(req.Message)))
	ctx := c.Request.Context()

	// Publish failure is fatal to the request: fail-fast, no degraded
	// response without the queued side effect.
	span, pctx := h.tracer.StartSpan(ctx, "publish_to_rabbitmq", tracing.SpanKindProducer)
	span.SetTag("messaging.destination", h.publisher.Queue())
	span.SetTag("chat.message_length", strconv.Itoa(len(req.Message)))
	err := h.publisher.Publish(pctx, queue.Job{Message: req.Message})
	if err != nil {
		span.SetError(err)
	}
	span.Finish()
	h.tracer.Submit(span)
	if err != nil {
		h.logger.Error("publish failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}

	span, cctx := h.tracer.StartSpan(ctx, "call_nlp_service", tracing.SpanKindInternal)
	classification, err := h.nlp.Post(cctx, "/classify", map[string]string{"text": req.Message})
	if err != nil {
		span.SetError(err)
	}
	span.Finish()
	h.tracer.Submit(span)
	if err != nil {
		h.logger.Error("nlp service call failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"detail": "NLP service unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"classification": classification,
	})
}

// ChatStream handles GET /chat-stream: a fixed, non-restartable producer
// of five chunks. Stops early if the client disconnects.
func (h *GatewayHandlers) ChatStream(c *gin.Context) {
	h.logger.Info("starting chat-stream")

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	for index := 0; index < streamChunks; index++ {
		select {
		case <-ctx.Done():
			h.logger.Info("chat-stream client disconnected", zap.Int("index", index))
			return
		default:
		}

		fmt.Fprintf(c.Writer, "chunk-%d\n", index)
		c.Writer.Flush()
		h.logger.Info("stream chunk emitted", zap.Int("index", index))

		select {
		case <-ctx.Done():
			return
		case <-time.After(h.streamDelay):
		}
	}
}

// Healthz handles GET /healthz.
func (h *GatewayHandlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
