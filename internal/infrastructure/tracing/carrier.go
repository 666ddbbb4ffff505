package tracing

import (
	"context"
	"fmt"
	"strings"
)

// Carrier header keys. Lowercase on the wire; extraction is
// case-insensitive so HTTP-canonicalized headers round-trip too.
const (
	CarrierTraceID = "x-trace-id"
	CarrierSpanID  = "x-span-id"
	CarrierFlags   = "x-trace-flags"
)

// Inject serializes the active trace context into a fresh string-keyed
// carrier suitable for HTTP headers or message headers. A context with
// no active trace yields an empty carrier.
func Inject(ctx context.Context) map[string]string {
	carrier := make(map[string]string)
	if traceID := GetTraceID(ctx); traceID != "" {
		carrier[CarrierTraceID] = string(traceID)
	}
	if spanID := GetSpanID(ctx); spanID != "" {
		carrier[CarrierSpanID] = string(spanID)
	}
	if flags := GetTraceFlags(ctx); flags != "" {
		carrier[CarrierFlags] = flags
	}
	return carrier
}

// Extract parses a carrier into trace identifiers. Missing or malformed
// entries never fail; they yield empty identifiers.
func Extract(carrier map[string]string) (TraceID, SpanID, string) {
	var traceID TraceID
	var spanID SpanID
	var flags string

	for key, value := range carrier {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch strings.ToLower(key) {
		case CarrierTraceID:
			traceID = TraceID(value)
		case CarrierSpanID:
			spanID = SpanID(value)
		case CarrierFlags:
			flags = value
		}
	}

	// A span id without a trace id cannot parent anything
	if traceID == "" {
		return "", "", ""
	}
	return traceID, spanID, flags
}

// ContextFromCarrier returns a context carrying the extracted trace
// identifiers, usable as a parent for new spans. An empty or invalid
// carrier returns ctx unchanged ("no parent").
func ContextFromCarrier(ctx context.Context, carrier map[string]string) context.Context {
	traceID, spanID, flags := Extract(carrier)
	if traceID == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, traceIDKey, traceID)
	if spanID != "" {
		ctx = context.WithValue(ctx, spanIDKey, spanID)
	}
	if flags != "" {
		ctx = context.WithValue(ctx, traceFlagsKey, flags)
	}
	return ctx
}

// NormalizeCarrier converts a loosely typed header table (message brokers
// deliver values as bytes or arbitrary scalars) into a plain string-keyed
// carrier. Nil values are skipped; everything else is stringified.
func NormalizeCarrier(raw map[string]interface{}) map[string]string {
	carrier := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			carrier[key] = v
		case []byte:
			carrier[key] = string(v)
		default:
			carrier[key] = fmt.Sprint(v)
		}
	}
	return carrier
}
