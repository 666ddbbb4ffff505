package tracing

import (
	"github.com/gin-gonic/gin"
)

// HTTPMiddleware creates Gin middleware for HTTP tracing
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract trace context from incoming headers
		carrier := map[string]string{
			CarrierTraceID: c.GetHeader(CarrierTraceID),
			CarrierSpanID:  c.GetHeader(CarrierSpanID),
			CarrierFlags:   c.GetHeader(CarrierFlags),
		}

		ctx := ContextFromCarrier(c.Request.Context(), carrier)

		// Start span
		name := c.FullPath()
		if name == "" {
			name = c.Request.URL.Path
		}
		span, ctx := tracer.StartSpan(ctx, name, SpanKindServer)
		span.SetTag("http.method", c.Request.Method)
		span.SetTag("http.url", c.Request.URL.String())
		span.SetTag("http.host", c.Request.Host)

		// Update request context
		c.Request = c.Request.WithContext(ctx)

		// Inject trace context into response headers
		c.Header(CarrierTraceID, string(span.TraceID))
		c.Header(CarrierSpanID, string(span.SpanID))

		// Process request
		c.Next()

		// Record response
		span.SetStatus(c.Writer.Status())

		if len(c.Errors) > 0 {
			span.SetError(c.Errors.Last())
		}

		span.Finish()
		tracer.Submit(span)
	}
}
