/*
Package tracing provides distributed tracing across the pipeline services.

# Overview

This package implements lightweight distributed tracing to track a chat
request across the gateway, the classification service, the message queue,
and the worker. It follows OpenTelemetry concepts but with a minimal
implementation tailored to the system's needs.

# Features

- Trace context propagation via HTTP headers and queue message headers
- Span creation with parent-child relationships and span kinds
- Automatic trace ID generation
- HTTP middleware for automatic instrumentation
- Structured logging integration
- Low overhead with buffered span collection
- Pluggable batch export of finished spans

# Usage

	// Create tracer
	tracer := tracing.New("gateway", logger)

	// HTTP middleware
	router.Use(tracing.HTTPMiddleware(tracer))

	// Manual span creation
	span, ctx := tracer.StartSpan(ctx, "publish_to_rabbitmq", tracing.SpanKindProducer)
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

	span.SetTag("messaging.destination", queueName)

	// Cross-boundary propagation
	headers := tracing.Inject(ctx)            // outgoing side
	ctx = tracing.ContextFromCarrier(ctx, h)  // incoming side

# Trace Format

Traces use string-keyed carriers for propagation:
  - x-trace-id: Unique identifier for the entire request flow
  - x-span-id: Identifier for the current operation
  - x-trace-flags: Opaque flags, propagated verbatim

Extraction is tolerant: missing, empty, or malformed entries produce a
"no parent" context, never an error. Message-header tables with byte
values are normalized with NormalizeCarrier before extraction.

# Performance

The tracing system is designed for minimal overhead:
- Buffered span collection (1000 spans)
- Async span processing
- Spans are dropped, never blocked on, when the buffer is full
*/
package tracing
