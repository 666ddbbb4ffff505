package export

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chatpipe/chatpipe/internal/infrastructure/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExportOnClose(t *testing.T) {
	received := make(chan []spanRecord, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var records []spanRecord
		_ = json.Unmarshal(body, &records)
		received <- records
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	exporter := New(srv.URL, zap.NewNop())
	exporter.ExportSpan(&tracing.Span{
		TraceID:   "trace_abc",
		SpanID:    "span_def",
		Kind:      tracing.SpanKindProducer,
		Name:      "publish_to_rabbitmq",
		Service:   "gateway",
		StartTime: time.Now(),
		EndTime:   time.Now(),
	})
	exporter.Close()

	select {
	case records := <-received:
		require.Len(t, records, 1)
		assert.Equal(t, "trace_abc", records[0].TraceID)
		assert.Equal(t, "span_def", records[0].SpanID)
		assert.Equal(t, "producer", records[0].Kind)
		assert.Equal(t, "gateway", records[0].Service)
	case <-time.After(5 * time.Second):
		t.Fatal("no batch received before timeout")
	}
}

func TestExportAfterCloseIsDropped(t *testing.T) {
	exported := make(chan struct{}, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exported <- struct{}{}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	exporter := New(srv.URL, zap.NewNop())
	exporter.Close()

	// A collector goroutine can still hand spans over after shutdown;
	// they must be dropped, never panic the process.
	assert.NotPanics(t, func() {
		exporter.ExportSpan(&tracing.Span{TraceID: "trace_abc", SpanID: "span_def"})
	})
	assert.NotPanics(t, exporter.Close)

	select {
	case <-exported:
		t.Fatal("span exported after close")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestExportFailureIsDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	exporter := New(srv.URL, zap.NewNop())
	exporter.ExportSpan(&tracing.Span{TraceID: "trace_abc", SpanID: "span_def"})

	// Close must not hang or panic on a rejecting collector
	exporter.Close()
}
