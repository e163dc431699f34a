package telemetry

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RequestIDHeader lets HTTP callers correlate a tool call with server logs.
const RequestIDHeader = "X-Request-Id"

type callMetaKey struct{}

// CallMeta correlates the log lines of one tool call. TraceID and SpanID are
// set only when the caller's context carries a valid span.
type CallMeta struct {
	RequestID string
	TraceID   string
	SpanID    string
}

// Fields renders the non-empty ids as log fields.
func (m CallMeta) Fields() []zap.Field {
	var fields []zap.Field
	for _, kv := range [...]struct{ key, value string }{
		{FieldRequestID, m.RequestID},
		{FieldTraceID, m.TraceID},
		{FieldSpanID, m.SpanID},
	} {
		if kv.value != "" {
			fields = append(fields, zap.String(kv.key, kv.value))
		}
	}
	return fields
}

// CallMetaFrom returns the metadata attached by EnsureRequestMeta.
func CallMetaFrom(ctx context.Context) (CallMeta, bool) {
	if ctx == nil {
		return CallMeta{}, false
	}
	meta, ok := ctx.Value(callMetaKey{}).(CallMeta)
	return meta, ok
}

// EnsureRequestMeta attaches call metadata to ctx. An explicit requestID wins,
// then one already on ctx, then a fresh uuid.
func EnsureRequestMeta(ctx context.Context, requestID string) (context.Context, CallMeta) {
	if ctx == nil {
		ctx = context.Background()
	}
	if requestID == "" {
		if existing, ok := CallMetaFrom(ctx); ok {
			requestID = existing.RequestID
		}
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}

	meta := CallMeta{RequestID: requestID}
	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		meta.TraceID = span.TraceID().String()
		meta.SpanID = span.SpanID().String()
	}
	return context.WithValue(ctx, callMetaKey{}, meta), meta
}

// LoggerWithRequest scopes base to the call on ctx.
func LoggerWithRequest(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	meta, ok := CallMetaFrom(ctx)
	if !ok {
		return base
	}
	return base.With(meta.Fields()...)
}
