/*
Package queue implements the durable job queue boundary of the pipeline.

# Overview

The gateway publishes one Job per chat request; a separate worker process
drains them. The queue carries the trace context across the asynchronous
boundary as string message headers, so the worker's consumer span parents
into the same trace as the originating HTTP request.

# Reliability contract

  - Publisher: durable queue declare (idempotent), persistent delivery
    mode, short-lived connection per publish, fire-and-await semantics.
    Any broker error surfaces as ErrPublishFailed, which is fatal to the
    issuing request.
  - Consumer: one long-lived connection, manual acknowledgement, bounded
    prefetch as the sole backpressure control. Each delivery takes exactly
    one terminal transition: acknowledged on success, rejected without
    requeue on any failure (decode or downstream). Rejected messages are
    dropped permanently: at-most-once processing per delivery attempt.

No ordering, dedup, or idempotency is layered on top of the broker's
per-queue FIFO.
*/
package queue
