// Package export delivers finished spans to an OTLP-style HTTP collector.
//
// Spans are batched (by size or flush interval) and posted as JSON to the
// configured endpoint. Export is best-effort: a failed batch is logged and
// dropped so telemetry can never stall or fail the request paths.
package export

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/chatpipe/chatpipe/internal/infrastructure/tracing"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const (
	batchSize     = 100
	flushInterval = 5 * time.Second
	bufferSize    = 1024
)

// spanRecord is the wire representation of a finished span.
type spanRecord struct {
	TraceID   string            `json:"trace_id"`
	SpanID    string            `json:"span_id"`
	ParentID  string            `json:"parent_id,omitempty"`
	Kind      string            `json:"kind"`
	Name      string            `json:"name"`
	Service   string            `json:"service"`
	StartTime int64             `json:"start_time_unix_nano"`
	EndTime   int64             `json:"end_time_unix_nano"`
	Tags      map[string]string `json:"tags,omitempty"`
	Status    int               `json:"status,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Exporter batches spans and ships them over HTTP.
type Exporter struct {
	endpoint  string
	client    *retryablehttp.Client
	logger    *zap.Logger
	spans     chan *tracing.Span
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates an exporter and starts its flush loop.
func New(endpoint string, logger *zap.Logger) *Exporter {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil // Disable retryablehttp's own logging

	e := &Exporter{
		endpoint: endpoint,
		client:   client,
		logger:   logger,
		spans:    make(chan *tracing.Span, bufferSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	go e.run()

	return e
}

// ExportSpan enqueues a span for export. Never blocks and never panics:
// spans arriving after Close (a draining collector goroutine can outlive
// server shutdown) are silently dropped, as are spans that find the
// buffer full.
func (e *Exporter) ExportSpan(span *tracing.Span) {
	select {
	case <-e.quit:
		return
	default:
	}

	select {
	case e.spans <- span:
	default:
		e.logger.Warn("export buffer full, dropping span",
			zap.String("trace_id", string(span.TraceID)),
			zap.String("span_id", string(span.SpanID)),
		)
	}
}

// Close flushes pending spans and stops the flush loop. Safe to call
// more than once.
func (e *Exporter) Close() {
	e.closeOnce.Do(func() { close(e.quit) })
	<-e.done
}

// run batches spans until Close is signaled, then drains the buffer and
// performs a final flush.
func (e *Exporter) run() {
	defer close(e.done)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]*tracing.Span, 0, batchSize)

	for {
		select {
		case <-e.quit:
			for {
				select {
				case span := <-e.spans:
					batch = append(batch, span)
					if len(batch) >= batchSize {
						e.flush(batch)
						batch = batch[:0]
					}
				default:
					e.flush(batch)
					return
				}
			}
		case span := <-e.spans:
			batch = append(batch, span)
			if len(batch) >= batchSize {
				e.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			e.flush(batch)
			batch = batch[:0]
		}
	}
}

// flush posts a batch to the collector endpoint.
func (e *Exporter) flush(batch []*tracing.Span) {
	if len(batch) == 0 {
		return
	}

	records := make([]spanRecord, 0, len(batch))
	for _, span := range batch {
		records = append(records, toRecord(span))
	}

	body, err := json.Marshal(records)
	if err != nil {
		e.logger.Warn("failed to encode span batch", zap.Error(err))
		return
	}

	req, err := retryablehttp.NewRequest(http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		e.logger.Warn("failed to build export request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Warn("span export failed",
			zap.String("endpoint", e.endpoint),
			zap.Int("spans", len(batch)),
			zap.Error(err),
		)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.logger.Warn("span export rejected",
			zap.String("endpoint", e.endpoint),
			zap.Int("status", resp.StatusCode),
			zap.Int("spans", len(batch)),
		)
	}
}

func toRecord(span *tracing.Span) spanRecord {
	record := spanRecord{
		TraceID:   string(span.TraceID),
		SpanID:    string(span.SpanID),
		ParentID:  string(span.ParentID),
		Kind:      string(span.Kind),
		Name:      span.Name,
		Service:   span.Service,
		StartTime: span.StartTime.UnixNano(),
		EndTime:   span.EndTime.UnixNano(),
		Tags:      span.Tags,
		Status:    span.StatusCode,
	}
	if span.Error != nil {
		record.Error = span.Error.Error()
	}
	return record
}
