package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reactor/pkg/reactive"
)

// Default tracer name.
const defaultTracerName = "reactor"

// TracerConfig configures flush tracing.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "reactor").
	TracerName string

	// Tracer overrides the tracer resolved from the global provider.
	Tracer trace.Tracer

	// Attributes are added to every span.
	Attributes []attribute.KeyValue

	// MinDuration skips flushes shorter than this. Flushes that hit the
	// update bound are always traced.
	MinDuration time.Duration
}

// TracerOption configures flush tracing.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracer uses t instead of the global provider's tracer.
func WithTracer(t trace.Tracer) TracerOption {
	return func(c *TracerConfig) {
		c.Tracer = t
	}
}

// WithAttributes adds attributes to every span.
func WithAttributes(attrs ...attribute.KeyValue) TracerOption {
	return func(c *TracerConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// WithMinDuration sets the shortest flush that gets a span.
func WithMinDuration(d time.Duration) TracerOption {
	return func(c *TracerConfig) {
		c.MinDuration = d
	}
}

// Tracer emits one span per scheduler flush and one per reported error.
// Spans are recorded after the fact using the flush's own timestamps.
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracer is given. Configure it in main() before creating the
// runtime:
//
//	otel.SetTracerProvider(tp)
type Tracer struct {
	config TracerConfig
	tracer trace.Tracer
}

var _ reactive.Instrumentation = (*Tracer)(nil)

// NewTracer creates a flush tracer.
func NewTracer(opts ...TracerOption) *Tracer {
	config := TracerConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	tracer := config.Tracer
	if tracer == nil {
		tracer = otel.Tracer(config.TracerName)
	}
	return &Tracer{config: config, tracer: tracer}
}

// Flushed implements reactive.Instrumentation.
func (t *Tracer) Flushed(stats reactive.FlushStats) {
	if stats.Duration < t.config.MinDuration && stats.Loops == 0 {
		return
	}
	attrs := append([]attribute.KeyValue{
		attribute.Int("reactor.flush.watchers", stats.Queued),
		attribute.Int("reactor.flush.runs", stats.Runs),
		attribute.Int("reactor.flush.loops", stats.Loops),
		attribute.Int("reactor.flush.updated", stats.Updated),
	}, t.config.Attributes...)

	_, span := t.tracer.Start(
		context.Background(),
		"reactor.flush",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(stats.Start),
	)
	if stats.Loops > 0 {
		span.SetStatus(codes.Error, "infinite update loop")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(stats.Start.Add(stats.Duration)))
}

// WatcherRan implements reactive.Instrumentation. Individual runs are
// covered by the flush span.
func (t *Tracer) WatcherRan(reactive.Mode, time.Duration) {}

// Reported implements reactive.Instrumentation. Warnings are skipped.
func (t *Tracer) Reported(err *reactive.Error) {
	if err.Warning() {
		return
	}
	attrs := append([]attribute.KeyValue{
		attribute.String("reactor.error.kind", err.Kind.String()),
		attribute.String("reactor.error.code", err.Code),
		attribute.String("reactor.error.info", err.Info),
	}, t.config.Attributes...)
	if err.Component != "" {
		attrs = append(attrs, attribute.String("reactor.component", err.Component))
	}

	_, span := t.tracer.Start(context.Background(), "reactor.error", trace.WithAttributes(attrs...))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}
