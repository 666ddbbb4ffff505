package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chatpipe/chatpipe/internal/downstream"
	"github.com/chatpipe/chatpipe/internal/infrastructure/tracing"
	"github.com/chatpipe/chatpipe/internal/queue"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPublisher struct {
	jobs []queue.Job
	err  error
}

func (s *stubPublisher) Publish(ctx context.Context, job queue.Job) error {
	s.jobs = append(s.jobs, job)
	return s.err
}

func (s *stubPublisher) Queue() string { return "chat-jobs" }

type stubCaller struct {
	result map[string]interface{}
	err    error
	bodies []interface{}
}

func (s *stubCaller) Post(ctx context.Context, path string, body interface{}) (map[string]interface{}, error) {
	s.bodies = append(s.bodies, body)
	return s.result, s.err
}

func newGatewayRouter(publisher JobPublisher, nlp Caller) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tracer := tracing.New("gateway", zap.NewNop())
	handlers := NewGatewayHandlers(publisher, nlp, tracer, zap.NewNop()).
		WithStreamDelay(time.Millisecond)

	router := gin.New()
	router.POST("/chat", handlers.Chat)
	router.GET("/chat-stream", handlers.ChatStream)
	router.GET("/healthz", handlers.Healthz)
	return router
}

func TestChatSuccess(t *testing.T) {
	publisher := &stubPublisher{}
	nlp := &stubCaller{result: map[string]interface{}{
		"classification": "short",
		"analysis":       map[string]interface{}{"length": float64(5)},
	}}
	router := newGatewayRouter(publisher, nlp)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, map[string]interface{}{
		"classification": "short",
		"analysis":       map[string]interface{}{"length": float64(5)},
	}, resp["classification"])

	// Publish happened before classification, with the message payload
	require.Len(t, publisher.jobs, 1)
	assert.Equal(t, "hello", publisher.jobs[0].Message)
	require.Len(t, nlp.bodies, 1)
	assert.Equal(t, map[string]string{"text": "hello"}, nlp.bodies[0])
}

func TestChatPublishFailureAbortsRequest(t *testing.T) {
	publisher := &stubPublisher{err: queue.ErrPublishFailed}
	nlp := &stubCaller{result: map[string]interface{}{}}
	router := newGatewayRouter(publisher, nlp)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// Fail-fast: the classification hop is never reached
	assert.Empty(t, nlp.bodies)
}

func TestChatDownstreamFailureMapsTo502(t *testing.T) {
	publisher := &stubPublisher{}
	nlp := &stubCaller{err: downstream.ErrUnavailable}
	router := newGatewayRouter(publisher, nlp)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NLP service unavailable", resp["detail"])
}

func TestChatInvalidBody(t *testing.T) {
	router := newGatewayRouter(&stubPublisher{}, &stubCaller{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`not json`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatStreamEmitsFiveChunks(t *testing.T) {
	router := newGatewayRouter(&stubPublisher{}, &stubCaller{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/chat-stream", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	lines := strings.Split(strings.TrimRight(w.Body.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	for i, line := range lines {
		assert.Equal(t, "chunk-"+string(rune('0'+i)), line)
	}
}

func TestHealthz(t *testing.T) {
	router := newGatewayRouter(&stubPublisher{}, &stubCaller{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestChatPublishErrorKind(t *testing.T) {
	// The handler does not distinguish publish error causes
	publisher := &stubPublisher{err: errors.New("channel closed")}
	router := newGatewayRouter(publisher, &stubCaller{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
