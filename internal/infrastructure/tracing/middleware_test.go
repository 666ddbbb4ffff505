package tracing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(tracer *Tracer, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/op", handler)
	return router
}

func TestHTTPMiddlewareStartsTrace(t *testing.T) {
	tracer := New("test", zap.NewNop())

	var seen TraceID
	router := newTestRouter(tracer, func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/op", nil)
	router.ServeHTTP(w, req)

	require.NotEmpty(t, seen)
	assert.Equal(t, string(seen), w.Header().Get("X-Trace-Id"))
	assert.NotEmpty(t, w.Header().Get("X-Span-Id"))
}

func TestHTTPMiddlewareContinuesIncomingTrace(t *testing.T) {
	tracer := New("test", zap.NewNop())

	var seen TraceID
	router := newTestRouter(tracer, func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/op", nil)
	req.Header.Set("X-Trace-Id", "trace_incoming")
	req.Header.Set("X-Span-Id", "span_incoming")
	router.ServeHTTP(w, req)

	assert.Equal(t, TraceID("trace_incoming"), seen)
	assert.Equal(t, "trace_incoming", w.Header().Get("X-Trace-Id"))
}

func TestHTTPMiddlewareToleratesGarbageHeaders(t *testing.T) {
	tracer := New("test", zap.NewNop())

	router := newTestRouter(tracer, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/op", nil)
	req.Header.Set("X-Span-Id", "span_orphan") // span without trace
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, "", w.Header().Get("X-Trace-Id"))
}
