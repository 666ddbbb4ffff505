// Package main is the entry point for the chat gateway service.
//
// The gateway accepts inbound chat messages and fans each one out to a
// durable queue job and a synchronous classification call:
//
//	Client → Gateway → RabbitMQ (chat-jobs)
//	                 → Classifier → Analyze service
//
// The server provides:
//   - POST /chat: publish + classify, combined response
//   - GET /chat-stream: fixed five-chunk demonstration stream
//   - GET /healthz, GET /metrics
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./gateway -port 8000
//
//	# Development mode (colored logs, debug level)
//	./gateway -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
