package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Queue metrics
	PublishesTotal  *prometheus.CounterVec
	PublishDuration *prometheus.HistogramVec
	DeliveriesTotal *prometheus.CounterVec
	ProcessDuration *prometheus.HistogramVec

	// Downstream call metrics
	DownstreamCalls    *prometheus.CounterVec
	DownstreamDuration *prometheus.HistogramVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a new metrics collector backed by its own registry,
// so each process (and each test) registers independently.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry:  registry,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatpipe_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatpipe_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		// Queue metrics
		PublishesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatpipe_queue_publishes_total",
				Help: "Total number of queue publish attempts",
			},
			[]string{"queue", "status"},
		),
		PublishDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatpipe_queue_publish_duration_seconds",
				Help:    "Queue publish duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"queue"},
		),
		DeliveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatpipe_queue_deliveries_total",
				Help: "Total number of consumed deliveries by outcome",
			},
			[]string{"queue", "outcome"},
		),
		ProcessDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatpipe_queue_process_duration_seconds",
				Help:    "Delivery processing duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"queue"},
		),

		// Downstream call metrics
		DownstreamCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatpipe_downstream_calls_total",
				Help: "Total number of downstream HTTP calls",
			},
			[]string{"service", "status"},
		),
		DownstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatpipe_downstream_call_duration_seconds",
				Help:    "Downstream HTTP call duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"service"},
		),

		// System metrics
		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "chatpipe_uptime_seconds",
				Help: "Process uptime in seconds",
			},
		),
	}

	return m
}

// Registry exposes the underlying registry for exposition handlers
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records metrics for an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordPublish records a queue publish attempt
func (m *Metrics) RecordPublish(queue, status string, duration time.Duration) {
	m.PublishesTotal.WithLabelValues(queue, status).Inc()
	m.PublishDuration.WithLabelValues(queue).Observe(duration.Seconds())
}

// RecordDelivery records a consumed delivery and its terminal outcome
func (m *Metrics) RecordDelivery(queue, outcome string, duration time.Duration) {
	m.DeliveriesTotal.WithLabelValues(queue, outcome).Inc()
	m.ProcessDuration.WithLabelValues(queue).Observe(duration.Seconds())
}

// RecordDownstream records a downstream HTTP call
func (m *Metrics) RecordDownstream(service, status string, duration time.Duration) {
	m.DownstreamCalls.WithLabelValues(service, status).Inc()
	m.DownstreamDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// UpdateUptime refreshes the uptime gauge
func (m *Metrics) UpdateUptime() {
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}
