package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chatpipe/chatpipe/internal/infrastructure/monitoring"
	"github.com/chatpipe/chatpipe/internal/infrastructure/tracing"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ErrDecodeFailed indicates a malformed message payload. Treated like a
// downstream failure: the delivery is rejected without requeue.
var ErrDecodeFailed = errors.New("message decode failed")

// DeliveryState tracks a delivery through its per-message state machine.
// Every delivery takes exactly one terminal transition:
// Received → Processing → {Acknowledged | Rejected}.
type DeliveryState int

const (
	StateReceived DeliveryState = iota
	StateProcessing
	StateAcknowledged
	StateRejected
)

// String returns the state name for logs and metrics labels.
func (s DeliveryState) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateProcessing:
		return "processing"
	case StateAcknowledged:
		return "acknowledged"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Analyzer is the downstream call dependency of the consumer.
type Analyzer interface {
	Post(ctx context.Context, path string, body interface{}) (map[string]interface{}, error)
}

// Consumer drains the job queue: it extracts the trace context from each
// delivery's headers, performs the downstream analyze call, and
// acknowledges on success or rejects without requeue on any failure.
// Rejected messages are dropped permanently; there is no dead-letter
// routing and no retry.
type Consumer struct {
	url      string
	queue    string
	prefetch int
	analyze  Analyzer
	tracer   *tracing.Tracer
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewConsumer creates a consumer for the named queue.
func NewConsumer(url, queue string, prefetch int, analyze Analyzer, tracer *tracing.Tracer, logger *zap.Logger) *Consumer {
	return &Consumer{
		url:      url,
		queue:    queue,
		prefetch: prefetch,
		analyze:  analyze,
		tracer:   tracer,
		logger:   logger,
	}
}

// WithMetrics attaches a metrics collector.
func (c *Consumer) WithMetrics(metrics *monitoring.Metrics) *Consumer {
	c.metrics = metrics
	return c
}

// Run consumes until ctx is canceled or the broker closes the stream.
// It holds one long-lived connection and channel for its entire run and
// releases both on every exit path. Prefetch bounds how many deliveries
// may be outstanding unacknowledged at once; bodies are still handled
// one at a time.
func (c *Consumer) Run(ctx context.Context) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}

	// Unique tag identifies this worker instance to the broker
	tag := "worker-" + uuid.NewString()
	deliveries, err := ch.Consume(c.queue, tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consume: %w", err)
	}

	c.logger.Info("consumer started",
		zap.String("queue", c.queue),
		zap.String("consumer_tag", tag),
		zap.Int("prefetch", c.prefetch),
	)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer interrupted, closing connection")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed by broker")
			}
			c.Handle(ctx, d)
		}
	}
}

// Handle drives one delivery through the state machine and returns its
// terminal state. Exactly one of Ack/Nack is invoked per delivery.
func (c *Consumer) Handle(ctx context.Context, d amqp.Delivery) DeliveryState {
	state := StateReceived
	start := time.Now()

	carrier := tracing.NormalizeCarrier(d.Headers)
	ctx = tracing.ContextFromCarrier(ctx, carrier)

	span, ctx := c.tracer.StartSpan(ctx, "rabbitmq.process", tracing.SpanKindConsumer)
	span.SetTag("messaging.system", "rabbitmq")
	span.SetTag("messaging.destination", c.queue)
	span.SetTag("messaging.operation", "process")
	defer func() {
		span.Finish()
		c.tracer.Submit(span)
	}()

	state = StateProcessing
	if err := c.process(ctx, d.Body); err != nil {
		span.SetError(err)
		c.logger.Error("processing failed, rejecting without requeue",
			zap.String("queue", c.queue),
			zap.Int("body_bytes", len(d.Body)),
			zap.Error(err),
		)
		if err := d.Nack(false, false); err != nil {
			c.logger.Error("nack failed", zap.Error(err))
		}
		state = StateRejected
	} else {
		if err := d.Ack(false); err != nil {
			c.logger.Error("ack failed", zap.Error(err))
		}
		state = StateAcknowledged
	}

	if c.metrics != nil {
		c.metrics.RecordDelivery(c.queue, state.String(), time.Since(start))
	}
	return state
}

// process decodes the payload and performs the analyze call.
func (c *Consumer) process(ctx context.Context, body []byte) error {
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	c.logger.Info("processing message", zap.Int("message_length", len(job.Message)))

	analysis, err := c.analyze.Post(ctx, "/analyze", map[string]string{"text": job.Message})
	if err != nil {
		return err
	}

	c.logger.Info("analyze result", zap.Any("analysis", analysis))
	return nil
}
