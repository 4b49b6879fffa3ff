// Package telemetry provides reactive.Hooks implementations that export
// tracker activity to Prometheus and OpenTelemetry.
//
// Hooks are passed to a tracker with reactive.WithHooks:
//
//	reg := prometheus.NewRegistry()
//	tr := reactive.New(reactive.WithHooks(telemetry.Multi(
//	    telemetry.Prometheus(telemetry.WithRegistry(reg)),
//	    telemetry.OpenTelemetry(),
//	)))
//
// Metrics are labeled by selector name, so name selectors with
// reactive.WithName to keep label values stable and low in cardinality.
package telemetry
