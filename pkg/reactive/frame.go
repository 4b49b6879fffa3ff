package reactive

// frame is one entry of the active-computation stack: the set of sources
// read by a single tracked computation.
type frame struct {
	// owner is the selector running this computation, or 0 for an anonymous
	// Track call.
	owner SourceID

	// seen deduplicates reads; order preserves first-read order.
	seen  map[SourceID]struct{}
	order []SourceID
}

func newFrame(owner SourceID) *frame {
	return &frame{owner: owner}
}

// add records a read of id.
func (f *frame) add(id SourceID) {
	if f.seen == nil {
		f.seen = make(map[SourceID]struct{}, 4)
	}
	if _, ok := f.seen[id]; ok {
		return
	}
	f.seen[id] = struct{}{}
	f.order = append(f.order, id)
}

// deps returns the sources read, in first-read order.
func (f *frame) deps() []SourceID {
	return f.order
}
