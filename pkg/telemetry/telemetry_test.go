package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vango-dev/statetrack/pkg/reactive"
)

// pair builds a store with two fields and a named sum selector.
func pair(tr *reactive.Tracker) (*reactive.Store, *reactive.Field[int], *reactive.Field[int], *reactive.Selector[int]) {
	store := reactive.NewStore(tr, "pair")
	a := reactive.Declare(store, "a", 1)
	b := reactive.Declare(store, "b", 2)
	sum := reactive.NewSelector(tr, func() int { return a.Get() + b.Get() }, reactive.WithName("sum"))
	return store, a, b, sum
}

func TestPrometheusRecordsBatches(t *testing.T) {
	reg := prometheus.NewRegistry()
	hooks := Prometheus(WithRegistry(reg), WithNamespace("test"))
	tr := reactive.New(reactive.WithHooks(hooks))
	store, a, b, sum := pair(tr)

	store.Update(func() {
		a.Set(10)
		b.Set(20)
	})
	store.Update(func() { a.Set(10) }) // no-op write, nothing flushed

	assert.Equal(t, 1.0, testutil.ToFloat64(hooks.recomputes.WithLabelValues("sum", "true")))
	assert.Equal(t, 0.0, testutil.ToFloat64(hooks.recomputes.WithLabelValues("sum", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(hooks.batches.WithLabelValues("pair")))
	assert.Equal(t, 1, testutil.CollectAndCount(hooks.recomputeDuration))

	sum.Dispose()
	assert.Equal(t, 1.0, testutil.ToFloat64(hooks.disposed))

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "test_recomputes_total")
	assert.Contains(t, names, "test_batch_recomputes")
}

func TestPrometheusCountsCascadeOverflow(t *testing.T) {
	reg := prometheus.NewRegistry()
	hooks := Prometheus(WithRegistry(reg))
	tr := reactive.New(reactive.WithHooks(hooks), reactive.WithMaxCascade(3))

	x := reactive.NewField(tr, 0)
	loop := reactive.NewSelector(tr, func() int { return x.Get() }, reactive.WithName("loop"))
	loop.OnChange(func(_, v int) { x.Set(v + 1) })

	x.Set(1)

	assert.Equal(t, 1.0, testutil.ToFloat64(hooks.cascadeOverflows.WithLabelValues("loop")))
	assert.Equal(t, 1.0, testutil.ToFloat64(hooks.batches.WithLabelValues("")))
}

func TestPrometheusDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	Prometheus(WithRegistry(reg))
	assert.Panics(t, func() { Prometheus(WithRegistry(reg)) })
	assert.NotPanics(t, func() { Prometheus(WithRegistry(reg), WithSubsystem("other")) })
}

func TestOpenTelemetrySpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	tr := reactive.New(reactive.WithHooks(OpenTelemetry(WithTracerProvider(tp))))
	store, a, _, _ := pair(tr)

	store.Update(func() { a.Set(5) })

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	recompute, flush := spans[0], spans[1]
	assert.Equal(t, "statetrack.recompute", recompute.Name)
	assert.Contains(t, recompute.Attributes, attribute.String("statetrack.selector", "sum"))
	assert.Contains(t, recompute.Attributes, attribute.Bool("statetrack.changed", true))
	assert.False(t, recompute.EndTime.Before(recompute.StartTime))

	assert.Equal(t, "statetrack.flush", flush.Name)
	assert.Contains(t, flush.Attributes, attribute.String("statetrack.store", "pair"))
	assert.Contains(t, flush.Attributes, attribute.Int("statetrack.recomputed", 1))
}

func TestOpenTelemetrySelectorFilter(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	hooks := OpenTelemetry(
		WithTracerProvider(tp),
		WithSelectorFilter(func(name string) bool { return name != "sum" }),
	)
	hooks.Recomputed("sum", time.Millisecond, true)
	hooks.Recomputed("other", time.Millisecond, false)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Attributes, attribute.String("statetrack.selector", "other"))
}

type countingHooks struct {
	reactive.NopHooks
	flushes, recomputes, disposed, cascades int
}

func (c *countingHooks) FlushStarted(string) func(int) {
	return func(int) { c.flushes++ }
}
func (c *countingHooks) Recomputed(string, time.Duration, bool) { c.recomputes++ }
func (c *countingHooks) Disposed(string)                        { c.disposed++ }
func (c *countingHooks) CascadeExceeded(string, int)            { c.cascades++ }

func TestMultiFansOut(t *testing.T) {
	first, second := &countingHooks{}, &countingHooks{}
	hooks := Multi(first, nil, second)

	done := hooks.FlushStarted("s")
	hooks.Recomputed("x", 0, true)
	done(1)
	hooks.Disposed("x")
	hooks.CascadeExceeded("x", 101)

	for _, c := range []*countingHooks{first, second} {
		assert.Equal(t, 1, c.flushes)
		assert.Equal(t, 1, c.recomputes)
		assert.Equal(t, 1, c.disposed)
		assert.Equal(t, 1, c.cascades)
	}
}

func TestMultiSingle(t *testing.T) {
	only := &countingHooks{}
	assert.Same(t, only, Multi(nil, only))
}
