//go:build otel && !gopls

package ctxmeta

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// Сборка с тегом `otel`: trace_id/span_id берутся из активного спана,
// чтобы записи логов дашборда склеивались с трейсами в jaeger.

func TraceIDFromContext(ctx context.Context) (string, bool) {
	sc := spanContext(ctx)
	if !sc.HasTraceID() {
		return "", false
	}
	return sc.TraceID().String(), true
}

func SpanIDFromContext(ctx context.Context) (string, bool) {
	sc := spanContext(ctx)
	if !sc.HasSpanID() {
		return "", false
	}
	return sc.SpanID().String(), true
}

func spanContext(ctx context.Context) trace.SpanContext {
	if ctx == nil {
		return trace.SpanContext{}
	}
	return trace.SpanFromContext(ctx).SpanContext()
}
