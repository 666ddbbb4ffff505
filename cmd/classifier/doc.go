// Package main is the entry point for the classification service.
//
// Given text, it calls the downstream analyze service and buckets the
// result by length (under 20 → "short", otherwise "long").
//
// The server provides:
//   - POST /classify
//   - GET /healthz, GET /metrics
//
// Usage:
//
//	./classifier -port 8001
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
