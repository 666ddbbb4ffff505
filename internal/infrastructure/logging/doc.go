// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Log Levels:
//   - Debug: Verbose debugging information
//   - Info: General informational messages
//   - Warn: Warning messages
//   - Error: Error messages
//   - Fatal: Fatal errors (exits process)
//
// Features:
//   - Zero-allocation logging in production
//   - Structured fields for context
//   - Configurable output paths
//   - Trace/span id correlation via fields
//
// Example Usage:
//
//	logger := logging.ForService(cfg.Logging.Level, cfg.Logging.Development)
//	logger.Info("Worker starting", zap.String("queue", "chat-jobs"))
//	logger.Error("Publish failed", zap.Error(err))
package logging
