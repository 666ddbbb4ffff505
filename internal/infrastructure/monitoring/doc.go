/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the
pipeline services, tracking HTTP requests, queue publishes and deliveries,
and downstream HTTP calls.

# Features

- HTTP request metrics (latency, throughput)
- Queue publish metrics (attempts, duration, status)
- Delivery metrics (ack/reject outcomes, processing duration)
- Downstream call metrics (duration, status)
- System metrics (uptime)

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Expose metrics
	router.GET("/metrics", metrics.Handler())

	// Time downstream operations
	timer := monitoring.NewTimer(metrics, "nlp")
	// ... perform call ...
	timer.Stop("success")

Each Metrics instance owns its registry, so processes and tests never
collide on registration.
*/
package monitoring
