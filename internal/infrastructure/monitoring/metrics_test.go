package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIndependentRegistries(t *testing.T) {
	// Two collectors must not collide on registration
	m1 := NewMetrics()
	m2 := NewMetrics()

	m1.RecordHTTPRequest("GET", "/healthz", "200", time.Millisecond)

	v1 := testutil.ToFloat64(m1.RequestsTotal.WithLabelValues("GET", "/healthz", "200"))
	v2 := testutil.ToFloat64(m2.RequestsTotal.WithLabelValues("GET", "/healthz", "200"))
	assert.Equal(t, float64(1), v1)
	assert.Equal(t, float64(0), v2)
}

func TestRecordDelivery(t *testing.T) {
	m := NewMetrics()

	m.RecordDelivery("chat-jobs", "acknowledged", 10*time.Millisecond)
	m.RecordDelivery("chat-jobs", "rejected", 10*time.Millisecond)
	m.RecordDelivery("chat-jobs", "rejected", 10*time.Millisecond)

	acked := testutil.ToFloat64(m.DeliveriesTotal.WithLabelValues("chat-jobs", "acknowledged"))
	rejected := testutil.ToFloat64(m.DeliveriesTotal.WithLabelValues("chat-jobs", "rejected"))
	assert.Equal(t, float64(1), acked)
	assert.Equal(t, float64(2), rejected)
}

func TestTimerRecordsDownstreamCall(t *testing.T) {
	m := NewMetrics()

	timer := NewTimer(m, "nlp")
	timer.Stop("success")
	NewTimer(m, "nlp").Stop("error")

	success := testutil.ToFloat64(m.DownstreamCalls.WithLabelValues("nlp", "success"))
	failed := testutil.ToFloat64(m.DownstreamCalls.WithLabelValues("nlp", "error"))
	assert.Equal(t, float64(1), success)
	assert.Equal(t, float64(1), failed)
}

func TestTimerWithoutCollectorIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		NewTimer(nil, "nlp").Stop("success")
	})
}

func TestMiddlewareRecordsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/op", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/op", nil)
	router.ServeHTTP(w, req)

	count := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/op", "200"))
	assert.Equal(t, float64(1), count)
}

func TestMetricsHandlerExposition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()
	m.RecordPublish("chat-jobs", "success", time.Millisecond)

	router := gin.New()
	router.GET("/metrics", m.Handler())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "chatpipe_queue_publishes_total")
	assert.Contains(t, w.Body.String(), "chatpipe_uptime_seconds")
}
