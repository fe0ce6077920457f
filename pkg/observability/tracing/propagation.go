package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// ExtractHTTPTraceContext extracts trace context from incoming request headers.
func ExtractHTTPTraceContext(ctx context.Context, header http.Header) context.Context {
	propagator := otel.GetTextMapPropagator()
	return propagator.Extract(ctx, propagation.HeaderCarrier(header))
}

// InjectHTTPTraceContext injects trace context into outgoing request headers.
func InjectHTTPTraceContext(ctx context.Context, header http.Header) {
	propagator := otel.GetTextMapPropagator()
	propagator.Inject(ctx, propagation.HeaderCarrier(header))
}
