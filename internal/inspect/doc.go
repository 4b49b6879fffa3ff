// Package inspect serves a developer-facing HTTP view of a running tracker.
//
// Routes:
//
//	GET /metrics       Prometheus exposition of the configured gatherer
//	GET /debug/stats   reactive.Stats as JSON
//	GET /debug/graph   subscription edges as JSON
//	GET /debug/watch   websocket stream of tracker events
//
// The watch stream is fed by Hub, which implements reactive.Hooks. Install
// it on the tracker (alongside any other hooks with telemetry.Multi) before
// creating stores and selectors.
package inspect
