// Package downstream provides the shared HTTP call chain used by every
// hop that talks to an HTTP dependency: the gateway calling the
// classification service, the classification service calling the analyze
// service, and the worker calling the analyze service.
//
// All failures collapse into one error kind, ErrUnavailable: transport
// errors, timeouts, and non-2xx statuses are indistinguishable to
// callers, which map it to their own externally visible outcome.
package downstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chatpipe/chatpipe/internal/infrastructure/monitoring"
	"github.com/chatpipe/chatpipe/internal/infrastructure/tracing"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrUnavailable indicates the downstream dependency could not serve the
// call: connection failure, timeout, or non-2xx response.
var ErrUnavailable = errors.New("downstream unavailable")

// DefaultTimeout bounds every downstream call.
const DefaultTimeout = 5 * time.Second

// Client performs bounded-timeout JSON calls against one downstream
// service. No retries: each call is attempted exactly once.
type Client struct {
	resty   *resty.Client
	tracer  *tracing.Tracer
	logger  *zap.Logger
	metrics *monitoring.Metrics
	service string
}

// New creates a call-chain client for the named service.
func New(service, baseURL string, timeout time.Duration, tracer *tracing.Tracer, logger *zap.Logger) *Client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", "chatpipe/1.0")

	return &Client{
		resty:   r,
		tracer:  tracer,
		logger:  logger,
		service: service,
	}
}

// WithMetrics attaches a metrics collector.
func (c *Client) WithMetrics(metrics *monitoring.Metrics) *Client {
	c.metrics = metrics
	return c
}

// Post issues a JSON POST and decodes the response body. The active
// trace context is injected into the outbound headers so the downstream
// hop links causally into the same trace.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (map[string]interface{}, error) {
	span, ctx := c.tracer.StartSpan(ctx, "POST "+path, tracing.SpanKindClient)
	span.SetTag("peer.service", c.service)
	span.SetTag("http.path", path)
	defer func() {
		span.Finish()
		c.tracer.Submit(span)
	}()

	timer := monitoring.NewTimer(c.metrics, c.service)

	var result map[string]interface{}
	req := c.resty.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result)
	for key, value := range tracing.Inject(ctx) {
		req.SetHeader(key, value)
	}

	resp, err := req.Post(path)
	if err != nil {
		span.SetError(err)
		timer.Stop("error")
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, c.service, err)
	}

	span.SetStatus(resp.StatusCode())
	if resp.IsError() {
		err := fmt.Errorf("%w: %s returned status %d", ErrUnavailable, c.service, resp.StatusCode())
		span.SetError(err)
		timer.Stop("error")
		return nil, err
	}

	timer.Stop("success")
	if result == nil {
		result = map[string]interface{}{}
	}
	return result, nil
}
