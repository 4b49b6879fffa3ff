package reactive

import "strconv"

// SourceID identifies a trackable source (a Field or a Selector) within a
// Tracker. Selectors use the same id when they act as subscribers.
// IDs are monotonically increasing and never reused.
type SourceID uint64

// String returns the decimal form of the id.
func (id SourceID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Source is anything whose reads can be tracked and whose changes can be
// invalidated: *Field[T] and *Selector[T].
type Source interface {
	// ID returns the source's identity, stable for its lifetime.
	ID() SourceID
	// Name returns a human-readable label used in logs and metrics.
	Name() string
}
