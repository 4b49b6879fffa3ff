// Package reactive is a fine-grained dependency-tracking runtime.
//
// A Selector runs an arbitrary read-only computation under tracking,
// discovers which fields it reads, subscribes to exactly those, and
// recomputes only when one of them actually changes. Fields are grouped into
// Stores, which offer batched mutation.
//
// # Core Types
//
// Tracker coordinates tracking. Every field, store and selector belongs to
// one tracker, so independent trackers (e.g. one per test) never interact:
//
//	t := reactive.New(reactive.WithLogger(logger))
//
// Field[T] is a trackable cell:
//
//	x := reactive.NewField(t, 1)
//	x.Get()   // read (records a dependency inside a computation)
//	x.Set(5)  // write (invalidates dependent selectors if the value changed)
//
// Selector[T] is a memoized derived value, computed eagerly at construction
// and again whenever a dependency changes:
//
//	double := reactive.NewSelector(t, func() int { return x.Get() * 2 })
//	double.Value() // 10
//
// Store owns fields and batches writes to them:
//
//	grid := reactive.NewStore(t, "grid")
//	a := reactive.Declare(grid, "a", 1)
//	b := reactive.Declare(grid, "b", 2)
//	sum := reactive.NewSelector(t, func() int { return a.Get() + b.Get() })
//	grid.Update(func() {
//	    a.Set(10)
//	    b.Set(20)
//	}) // sum recomputes once
//
// A store can also expose computed properties with DeclareDerived. A reader
// of a Derived depends on the fields the Derived read, not on the Derived:
//
//	snap := reactive.DeclareDerived(grid, "snap", func() int { return a.Get() * b.Get() })
//
// Batches accept options; BatchAlwaysNotify republishes every recomputed
// selector of that batch even if its value is unchanged.
//
// # Equality
//
// Writes of an equal value and recomputations producing an equal value are
// suppressed for comparable types. Values of non-comparable types (slices,
// maps) always count as changed unless WithEquals supplies an equality.
//
// # Thread Safety
//
// Tracking state (the active-computation stack and open batches) is kept
// per goroutine. Values and the subscription table are guarded by locks, so
// selectors may be read from any goroutine, but a computation and the
// writes that invalidate it are expected to run on one logical thread of
// control. Updates on one store are serialized across goroutines.
//
// # Failures
//
// A panic in a computation, an observer or a mutator drops the
// recomputations still queued on that goroutine. Affected selectors keep
// their previous values and stay subscribed to the sources of their last
// completed run, so the next write to one of those sources recomputes them.
package reactive
