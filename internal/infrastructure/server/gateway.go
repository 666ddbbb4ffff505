package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/chatpipe/chatpipe/internal/api/http"
	"github.com/chatpipe/chatpipe/internal/api/middleware"
	"github.com/chatpipe/chatpipe/internal/downstream"
	"github.com/chatpipe/chatpipe/internal/infrastructure/config"
	"github.com/chatpipe/chatpipe/internal/infrastructure/logging"
	"github.com/chatpipe/chatpipe/internal/infrastructure/monitoring"
	"github.com/chatpipe/chatpipe/internal/infrastructure/tracing"
	"github.com/chatpipe/chatpipe/internal/infrastructure/tracing/export"
	"github.com/chatpipe/chatpipe/internal/queue"
)

// Gateway is the chat entry-point service.
type Gateway struct {
	router   *gin.Engine
	server   *http.Server
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	exporter *export.Exporter
}

// NewGateway wires the gateway's dependency graph: logger, metrics,
// tracer+exporter, queue publisher, classification client, router.
func NewGateway(cfg *config.Config) (*Gateway, error) {
	logger := logging.ForService(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("initializing gateway",
		zap.String("port", cfg.Server.Port),
		zap.String("queue", cfg.Queue.Name),
		zap.String("nlp_url", cfg.NLP.BaseURL),
		zap.String("trace_endpoint", cfg.Tracing.Endpoint),
	)

	metrics := monitoring.NewMetrics()

	exporter := export.New(cfg.Tracing.Endpoint, logger.Logger)
	tracer := tracing.New("gateway", logger.Logger).WithExporter(exporter)

	publisher := queue.NewPublisher(cfg.Queue.URL(), cfg.Queue.Name, logger.Logger).
		WithMetrics(metrics)

	nlp := downstream.New("nlp", cfg.NLP.BaseURL, downstream.DefaultTimeout, tracer, logger.Logger).
		WithMetrics(metrics)

	handlers := apihttp.NewGatewayHandlers(publisher, nlp, tracer, logger.Logger)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	router.POST("/chat", handlers.Chat)
	router.GET("/chat-stream", handlers.ChatStream)
	router.GET("/healthz", handlers.Healthz)
	router.GET("/metrics", metrics.Handler())

	return &Gateway{
		router:   router,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		tracer:   tracer,
		exporter: exporter,
	}, nil
}

// Run starts the HTTP server and blocks until it stops.
func (g *Gateway) Run() error {
	addr := net.JoinHostPort(g.config.Server.Host, g.config.Server.Port)
	g.server = &http.Server{
		Addr:              addr,
		Handler:           g.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.logger.Info("gateway listening", zap.String("addr", addr))
	if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts the server down gracefully and flushes telemetry.
func (g *Gateway) Close() error {
	var err error
	if g.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = g.server.Shutdown(ctx)
	}
	g.exporter.Close()
	_ = g.logger.Sync()
	return err
}
