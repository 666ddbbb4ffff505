// Package main is the entry point for the queue worker.
//
// The worker drains the chat-jobs queue: for each delivery it extracts
// the trace context from the message headers, calls the downstream
// analyze service, and acknowledges on success or rejects without
// requeue on any failure. Prefetch bounds in-flight deliveries at 10.
//
// Usage:
//
//	./worker
//	./worker -dev
//
// Signals:
//   - SIGINT, SIGTERM: Stop consuming, close channel and connection
package main
