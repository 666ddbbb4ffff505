// Package config provides 12-factor configuration management for the pipeline.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Queue: Message broker connection, queue name, prefetch bound
//   - NLP: Classification service base URL
//   - Analyze: Downstream analyze service base URL
//   - Tracing: Span exporter endpoint
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Publishing to queue %s on %s\n", cfg.Queue.Name, cfg.Queue.Host)
//
// Environment Variables:
//   - PORT, HOST
//   - RABBITMQ_HOST, RABBITMQ_PORT, RABBITMQ_QUEUE, RABBITMQ_PREFETCH
//   - NLP_SERVICE_URL, ANALYZE_SERVICE_URL, TRACE_EXPORTER_ENDPOINT
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST
package config
