package tracer

import (
	"context"
	"fmt"
	"time"

	dErrors "vcproof/pkg/domain-errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the tracer name registered with the provider.
const InstrumentationName = "vcproof/proof"

// AttrErrorCode is set on failed spans. The span status carries the code as
// its description instead of the error text.
const AttrErrorCode = "error.code"

// OTelTracer adapts an OpenTelemetry provider to Tracer. Proof spans are
// internal: they never cross a process boundary.
type OTelTracer struct {
	tracer trace.Tracer
}

type OTelOption func(*otelConfig)

type otelConfig struct {
	provider trace.TracerProvider
	version  string
}

// WithTracerProvider uses tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *otelConfig) { c.provider = tp }
}

// WithInstrumentationVersion tags spans with the running build.
func WithInstrumentationVersion(version string) OTelOption {
	return func(c *otelConfig) { c.version = version }
}

func NewOTel(opts ...OTelOption) *OTelTracer {
	cfg := otelConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.provider == nil {
		cfg.provider = otel.GetTracerProvider()
	}
	var tracerOpts []trace.TracerOption
	if cfg.version != "" {
		tracerOpts = append(tracerOpts, trace.WithInstrumentationVersion(cfg.version))
	}
	return &OTelTracer{tracer: cfg.provider.Tracer(InstrumentationName, tracerOpts...)}
}

func (t *OTelTracer) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(keyValues(attrs)...),
	)
	return ctx, &otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

// End marks failed runs with their domain code. Verification failures are
// expected outcomes, so only internal errors are recorded as span events
// with their message.
func (s *otelSpan) End(err error) {
	if err == nil {
		s.span.SetStatus(codes.Ok, "")
		s.span.End()
		return
	}
	code := dErrors.CodeOf(err)
	s.span.SetAttributes(attribute.String(AttrErrorCode, string(code)))
	s.span.SetStatus(codes.Error, string(code))
	if code == dErrors.CodeInternal {
		s.span.RecordError(err)
	}
	s.span.End()
}

func (s *otelSpan) SetAttributes(attrs ...Attribute) {
	s.span.SetAttributes(keyValues(attrs)...)
}

func (s *otelSpan) AddEvent(name string, attrs ...Attribute) {
	s.span.AddEvent(name, trace.WithAttributes(keyValues(attrs)...))
}

// keyValues converts attributes to their OpenTelemetry form. Durations are
// recorded in milliseconds; values of any other type fall back to their
// printed form so no attribute is silently dropped.
func keyValues(attrs []Attribute) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, keyValue(a))
	}
	return out
}

func keyValue(a Attribute) attribute.KeyValue {
	switch v := a.Value.(type) {
	case string:
		return attribute.String(a.Key, v)
	case bool:
		return attribute.Bool(a.Key, v)
	case int64:
		return attribute.Int64(a.Key, v)
	case int:
		return attribute.Int(a.Key, v)
	case float64:
		return attribute.Float64(a.Key, v)
	case time.Duration:
		return attribute.Int64(a.Key, v.Milliseconds())
	case []string:
		return attribute.StringSlice(a.Key, v)
	default:
		return attribute.String(a.Key, fmt.Sprint(v))
	}
}

var (
	_ Tracer = (*OTelTracer)(nil)
	_ Span   = (*otelSpan)(nil)
)
