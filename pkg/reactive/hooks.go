package reactive

import "time"

// Hooks receives runtime events for instrumentation. Implementations must be
// cheap and must not call back into the Tracker.
type Hooks interface {
	// FlushStarted is called when queued recomputations start draining.
	// scope is the name of the store whose Update opened the batch, or ""
	// for Tracker.Batch and implicit single-write batches. The returned
	// function is called with the number of recomputations when the flush
	// completes.
	FlushStarted(scope string) (done func(recomputed int))

	// Recomputed is called after every selector recomputation triggered by
	// invalidation or Refresh.
	Recomputed(selector string, elapsed time.Duration, changed bool)

	// Disposed is called once when a selector is disposed or collected.
	Disposed(selector string)

	// CascadeExceeded is called when a selector exceeds the cascade limit
	// during one flush.
	CascadeExceeded(selector string, runs int)
}

// NopHooks is a Hooks implementation that does nothing.
// Embed it to implement only some of the methods.
type NopHooks struct{}

func (NopHooks) FlushStarted(string) func(int)          { return func(int) {} }
func (NopHooks) Recomputed(string, time.Duration, bool) {}
func (NopHooks) Disposed(string)                        {}
func (NopHooks) CascadeExceeded(string, int)            {}

var _ Hooks = NopHooks{}
