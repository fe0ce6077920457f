package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

// Config holds the tracing configuration.
type Config struct {
	Enabled               bool
	ExporterType          string
	ExporterEndpoint      string
	ExporterInsecure      bool
	SamplingType          string
	SamplingRate          float64
	ServiceName           string
	ServiceVersion        string
	DeploymentEnvironment string
}

var (
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
)

// InitTracing initializes the OpenTelemetry tracing provider.
func InitTracing(ctx context.Context, cfg Config) error {
	if !cfg.Enabled {
		return nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(cfg.DeploymentEnvironment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdktrace.SpanExporter
	switch cfg.ExporterType {
	case "otlp":
		exporter, err = createOTLPExporter(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
	case "", "stdout":
		exporter, err = stdouttrace.New(
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
	default:
		return fmt.Errorf("unsupported exporter type: %s", cfg.ExporterType)
	}

	var sampler sdktrace.Sampler
	switch cfg.SamplingType {
	case "always_on":
		sampler = sdktrace.AlwaysSample()
	case "always_off":
		sampler = sdktrace.NeverSample()
	case "probabilistic":
		sampler = sdktrace.TraceIDRatioBased(cfg.SamplingRate)
	default:
		sampler = sdktrace.AlwaysSample()
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tracerProvider)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tracer = tracerProvider.Tracer("credgate")

	return nil
}

// createOTLPExporter creates an OTLP gRPC exporter. The exporter connects
// asynchronously so a temporarily unavailable collector does not block startup.
func createOTLPExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.ExporterEndpoint),
	}

	if cfg.ExporterInsecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return otlptracegrpc.New(ctxWithTimeout, opts...)
}

// ShutdownTracing gracefully shuts down the tracing provider.
func ShutdownTracing(ctx context.Context) error {
	if tracerProvider != nil {
		return tracerProvider.Shutdown(ctx)
	}
	return nil
}

// GetTracer returns the global tracer, or a noop tracer before initialization.
func GetTracer() trace.Tracer {
	if tracer == nil {
		return otel.Tracer("credgate")
	}
	return tracer
}

// StartSpan starts a new span with the given name and options.
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	if tracer == nil {
		return otel.Tracer("credgate").Start(ctx, spanName, opts...)
	}
	return tracer.Start(ctx, spanName, opts...)
}

// SetSpanAttributes sets attributes on a span if it exists.
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span != nil {
		span.SetAttributes(attrs...)
	}
}

// RecordError records an error on a span if it exists.
func RecordError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
	}
}

// StartStageSpan starts a span for one decision pipeline stage.
func StartStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	var spanName string
	switch stage {
	case "extract":
		spanName = SpanStageExtract
	case "gate":
		spanName = SpanStageGate
	case "normalize":
		spanName = SpanStageNormalize
	case "classify":
		spanName = SpanStageClassify
	case "corroborate":
		spanName = SpanStageCorroborate
	case "arbitrate":
		spanName = SpanStageArbitrate
	case "correct":
		spanName = SpanStageCorrect
	case "signals":
		spanName = SpanStageSignals
	case "explain":
		spanName = SpanStageExplain
	default:
		spanName = SpanStage
	}

	spanCtx, span := StartSpan(ctx, spanName)
	SetSpanAttributes(span, attribute.String(AttrStageName, stage))
	return spanCtx, span
}

// EndStageSpan ends a stage span with its outcome and latency.
func EndStageSpan(span trace.Span, outcome string, latencyMs int64) {
	if span == nil {
		return
	}

	SetSpanAttributes(span,
		attribute.String(AttrStageOutcome, outcome),
		attribute.Int64(AttrStageLatencyMs, latencyMs))

	span.End()
}

// Span attribute keys.
const (
	// Request metadata
	AttrRequestID  = "request.id"
	AttrHTTPMethod = "http.method"
	AttrHTTPPath   = "http.path"

	// Stage attributes
	AttrStageName      = "stage.name"
	AttrStageOutcome   = "stage.outcome"
	AttrStageLatencyMs = "stage.latency_ms"

	// Verdict attributes
	AttrVerdictLabel      = "verdict.label"
	AttrVerdictConfidence = "verdict.confidence"
	AttrGateReason        = "gate.reason"
	AttrOverrideApplied   = "verdict.override_applied"
	AttrEvidenceCount     = "verdict.evidence_count"
	AttrCorrectionFound   = "verdict.correction_found"

	// Collaborator attributes
	AttrClassifierBackend = "classifier.backend"
	AttrClassifierLabel   = "classifier.label"
	AttrSearchProvider    = "search.provider"
	AttrSearchResults     = "search.results"
	AttrCacheName         = "cache.name"
	AttrCacheHit          = "cache.hit"
	AttrStoreBackend      = "store.backend"
	AttrExtractURL        = "extract.url"
)

// Span names.
const (
	// Root span
	SpanRequestReceived = "credgate.request.received"

	// Pipeline stages
	SpanStage            = "credgate.stage"
	SpanStageExtract     = "credgate.stage.extract"
	SpanStageGate        = "credgate.stage.gate"
	SpanStageNormalize   = "credgate.stage.normalize"
	SpanStageClassify    = "credgate.stage.classify"
	SpanStageCorroborate = "credgate.stage.corroborate"
	SpanStageArbitrate   = "credgate.stage.arbitrate"
	SpanStageCorrect     = "credgate.stage.correct"
	SpanStageSignals     = "credgate.stage.signals"
	SpanStageExplain     = "credgate.stage.explain"

	// Collaborator calls
	SpanSearchRequest = "credgate.search.request"
	SpanCacheLookup   = "credgate.cache.lookup"
	SpanStoreRecord   = "credgate.store.record"
)
