package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chatpipe/chatpipe/internal/infrastructure/monitoring"
	"github.com/chatpipe/chatpipe/internal/infrastructure/tracing"
	"github.com/chatpipe/chatpipe/internal/shared/id"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ErrPublishFailed indicates the broker was unreachable or the publish
// itself failed. Callers treat this as fatal to the issuing request.
var ErrPublishFailed = errors.New("queue publish failed")

// Job is the payload carried by a queued chat message.
type Job struct {
	Message string `json:"message"`
}

// Publisher publishes jobs to a durable queue. Each publish opens and
// closes its own short-lived connection; no connection is shared with
// the consumer.
type Publisher struct {
	url     string
	queue   string
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewPublisher creates a publisher for the named queue.
func NewPublisher(url, queue string, logger *zap.Logger) *Publisher {
	return &Publisher{
		url:    url,
		queue:  queue,
		logger: logger,
	}
}

// WithMetrics attaches a metrics collector.
func (p *Publisher) WithMetrics(metrics *monitoring.Metrics) *Publisher {
	p.metrics = metrics
	return p
}

// Queue returns the destination queue name.
func (p *Publisher) Queue() string {
	return p.queue
}

// Publish serializes the job, attaches the active trace context as
// message headers, and publishes it persistently. The blocking broker
// round trip runs on its own goroutine so it cannot stall other requests
// sharing the caller's scheduler, but the caller still waits for the
// outcome: fire-and-await, not fire-and-forget.
func (p *Publisher) Publish(ctx context.Context, job Job) error {
	headers := amqp.Table{}
	for key, value := range tracing.Inject(ctx) {
		headers[key] = value
	}

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("%w: encode payload: %v", ErrPublishFailed, err)
	}

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- p.publish(ctx, headers, body)
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err != nil {
		p.record("error", start)
		if errors.Is(err, ErrPublishFailed) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}

	p.record("success", start)
	p.logger.Info("published job",
		zap.String("queue", p.queue),
		zap.Int("payload_bytes", len(body)),
	)
	return nil
}

// publish performs the blocking broker round trip.
func (p *Publisher) publish(ctx context.Context, headers amqp.Table, body []byte) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("%w: dial: %v", ErrPublishFailed, err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("%w: open channel: %v", ErrPublishFailed, err)
	}
	defer ch.Close()

	// Idempotent when the queue already exists with the same settings
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("%w: declare queue: %v", ErrPublishFailed, err)
	}

	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    string(id.NewMessageID()),
		Timestamp:    time.Now(),
		Headers:      headers,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("%w: basic publish: %v", ErrPublishFailed, err)
	}
	return nil
}

func (p *Publisher) record(status string, start time.Time) {
	if p.metrics != nil {
		p.metrics.RecordPublish(p.queue, status, time.Since(start))
	}
}
