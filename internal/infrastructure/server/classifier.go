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
)

// Classifier is the classification hop service.
type Classifier struct {
	router   *gin.Engine
	server   *http.Server
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	exporter *export.Exporter
}

// NewClassifier wires the classifier's dependency graph.
func NewClassifier(cfg *config.Config) (*Classifier, error) {
	logger := logging.ForService(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("initializing classifier",
		zap.String("port", cfg.Server.Port),
		zap.String("analyze_url", cfg.Analyze.BaseURL),
		zap.String("trace_endpoint", cfg.Tracing.Endpoint),
	)

	metrics := monitoring.NewMetrics()

	exporter := export.New(cfg.Tracing.Endpoint, logger.Logger)
	tracer := tracing.New("classifier", logger.Logger).WithExporter(exporter)

	analyze := downstream.New("analyze", cfg.Analyze.BaseURL, downstream.DefaultTimeout, tracer, logger.Logger).
		WithMetrics(metrics)

	handlers := apihttp.NewClassifierHandlers(analyze, tracer, logger.Logger)

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

	router.POST("/classify", handlers.Classify)
	router.GET("/healthz", handlers.Healthz)
	router.GET("/metrics", metrics.Handler())

	return &Classifier{
		router:   router,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		tracer:   tracer,
		exporter: exporter,
	}, nil
}

// Run starts the HTTP server and blocks until it stops.
func (s *Classifier) Run() error {
	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("classifier listening", zap.String("addr", addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts the server down gracefully and flushes telemetry.
func (s *Classifier) Close() error {
	var err error
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = s.server.Shutdown(ctx)
	}
	s.exporter.Close()
	_ = s.logger.Sync()
	return err
}
