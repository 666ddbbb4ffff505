package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/chatpipe/chatpipe/internal/downstream"
	"github.com/chatpipe/chatpipe/internal/infrastructure/config"
	"github.com/chatpipe/chatpipe/internal/infrastructure/logging"
	"github.com/chatpipe/chatpipe/internal/infrastructure/tracing"
	"github.com/chatpipe/chatpipe/internal/infrastructure/tracing/export"
	"github.com/chatpipe/chatpipe/internal/queue"
)

func main() {
	// Parse flags
	dev := flag.Bool("dev", false, "Development mode (colored logs, debug level)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	logger := logging.ForService(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("initializing worker",
		zap.String("broker", cfg.Queue.Host),
		zap.String("queue", cfg.Queue.Name),
		zap.Int("prefetch", cfg.Queue.Prefetch),
		zap.String("analyze_url", cfg.Analyze.BaseURL),
	)

	exporter := export.New(cfg.Tracing.Endpoint, logger.Logger)
	tracer := tracing.New("worker", logger.Logger).WithExporter(exporter)

	analyze := downstream.New("analyze", cfg.Analyze.BaseURL, downstream.DefaultTimeout, tracer, logger.Logger)

	consumer := queue.NewConsumer(cfg.Queue.URL(), cfg.Queue.Name, cfg.Queue.Prefetch, analyze, tracer, logger.Logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start consumer in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- consumer.Run(ctx)
	}()

	// Wait for shutdown signal or consumer exit
	select {
	case <-sigChan:
		log.Println("Shutting down gracefully...")
		cancel()
		if err := <-errChan; err != nil {
			log.Printf("Consumer error during shutdown: %v", err)
		}
	case err := <-errChan:
		if err != nil {
			exporter.Close()
			log.Fatalf("Consumer error: %v", err)
		}
	}

	exporter.Close()
	_ = logger.Sync()
}
