package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/statetrack/pkg/reactive"
)

// Default tracer name.
const defaultTracerName = "statetrack"

// OTelConfig configures the OpenTelemetry hooks.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "statetrack").
	TracerName string

	// TracerProvider supplies the tracer. Default: the global provider.
	TracerProvider trace.TracerProvider

	// Filter determines which selectors get recompute spans.
	// If nil, every recomputation is traced.
	Filter func(selector string) bool
}

// OTelOption configures the OpenTelemetry hooks.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithSelectorFilter limits recompute spans to selectors for which filter
// returns true.
func WithSelectorFilter(filter func(selector string) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// OTelHooks records tracker activity as OpenTelemetry spans.
type OTelHooks struct {
	tracer trace.Tracer
	filter func(string) bool
}

// OpenTelemetry creates hooks that emit one span per flushed batch and one
// per recomputation. Recompute spans are back-dated to cover the measured
// computation time.
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given. Configure it in main():
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) *OTelHooks {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &OTelHooks{
		tracer: tp.Tracer(config.TracerName),
		filter: config.Filter,
	}
}

// FlushStarted implements reactive.Hooks.
func (o *OTelHooks) FlushStarted(scope string) func(int) {
	_, span := o.tracer.Start(context.Background(), "statetrack.flush",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("statetrack.store", scope)),
	)
	return func(recomputed int) {
		span.SetAttributes(attribute.Int("statetrack.recomputed", recomputed))
		span.End()
	}
}

// Recomputed implements reactive.Hooks.
func (o *OTelHooks) Recomputed(selector string, elapsed time.Duration, changed bool) {
	if o.filter != nil && !o.filter(selector) {
		return
	}
	end := time.Now()
	_, span := o.tracer.Start(context.Background(), "statetrack.recompute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(end.Add(-elapsed)),
		trace.WithAttributes(
			attribute.String("statetrack.selector", selector),
			attribute.Bool("statetrack.changed", changed),
		),
	)
	span.End(trace.WithTimestamp(end))
}

// Disposed implements reactive.Hooks.
func (o *OTelHooks) Disposed(string) {}

// CascadeExceeded implements reactive.Hooks.
func (o *OTelHooks) CascadeExceeded(selector string, runs int) {
	_, span := o.tracer.Start(context.Background(), "statetrack.cascade_exceeded",
		trace.WithAttributes(
			attribute.String("statetrack.selector", selector),
			attribute.Int("statetrack.runs", runs),
		),
	)
	span.SetStatus(codes.Error, "cascade limit exceeded")
	span.End()
}

var _ reactive.Hooks = (*OTelHooks)(nil)
