package reactive

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"
	"weak"
)

// node is the type-erased, tracker-facing half of a Selector. The tracker
// only ever holds weak pointers to nodes; the owning Selector keeps its node
// alive.
type node struct {
	id   SourceID
	name string

	// recompute re-runs the selector under tracking and republishes.
	recompute func()

	disposed atomic.Bool
}

// table is the subscription table: source -> subscribers, with a reverse
// index subscriber -> sources so that a subscriber's edges can be replaced
// or released without scanning every source.
type table struct {
	mu sync.Mutex

	subscribers map[SourceID]map[SourceID]struct{}
	sources     map[SourceID]map[SourceID]struct{}

	// nodes is the subscriber registry. Entries are non-owning.
	nodes map[SourceID]weak.Pointer[node]

	// names labels every registered source for introspection.
	names map[SourceID]string

	// last is the dependency set of each subscriber's most recent completed
	// run. Writes clear edges before the subscriber recomputes; restore
	// puts them back when that recomputation never happens.
	last map[SourceID][]SourceID
}

func newTable() *table {
	return &table{
		subscribers: make(map[SourceID]map[SourceID]struct{}),
		sources:     make(map[SourceID]map[SourceID]struct{}),
		nodes:       make(map[SourceID]weak.Pointer[node]),
		names:       make(map[SourceID]string),
		last:        make(map[SourceID][]SourceID),
	}
}

// label records the display name of a source.
func (t *table) label(id SourceID, name string) {
	t.mu.Lock()
	t.names[id] = name
	t.mu.Unlock()
}

// register adds a subscriber node to the registry.
func (t *table) register(n *node) {
	t.mu.Lock()
	t.nodes[n.id] = weak.Make(n)
	t.names[n.id] = n.name
	t.mu.Unlock()
}

// resolve returns the live node for id, or nil if it was released, disposed
// or garbage collected.
func (t *table) resolve(id SourceID) *node {
	t.mu.Lock()
	wp, ok := t.nodes[id]
	t.mu.Unlock()
	if !ok {
		return nil
	}
	n := wp.Value()
	if n == nil || n.disposed.Load() {
		return nil
	}
	return n
}

// drop removes every subscription held by sub.
func (t *table) drop(sub SourceID) {
	t.mu.Lock()
	t.dropLocked(sub)
	t.mu.Unlock()
}

func (t *table) dropLocked(sub SourceID) {
	for src := range t.sources[sub] {
		if subs := t.subscribers[src]; subs != nil {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(t.subscribers, src)
			}
		}
	}
	delete(t.sources, sub)
}

// subscribe adds edges from each dep to sub and records deps as sub's
// latest dependency set. Callers drop the previous set first, so after
// subscribe the edges reflect exactly deps.
func (t *table) subscribe(sub SourceID, deps []SourceID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// A subscriber released while its computation was running must not be
	// resurrected.
	if _, ok := t.nodes[sub]; !ok {
		return
	}
	t.last[sub] = slices.Clone(deps)
	t.subscribeLocked(sub, deps)
}

func (t *table) subscribeLocked(sub SourceID, deps []SourceID) {
	if len(deps) == 0 {
		return
	}
	own := t.sources[sub]
	if own == nil {
		own = make(map[SourceID]struct{}, len(deps))
		t.sources[sub] = own
	}
	for _, src := range deps {
		subs := t.subscribers[src]
		if subs == nil {
			subs = make(map[SourceID]struct{}, 1)
			t.subscribers[src] = subs
		}
		subs[sub] = struct{}{}
		own[src] = struct{}{}
	}
}

// restore resubscribes sub to the dependency set of its last completed run.
// It is used when a queued recomputation is abandoned or a computation
// panics, so sub keeps reacting to the sources it last read.
func (t *table) restore(sub SourceID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.nodes[sub]; !ok {
		return
	}
	t.dropLocked(sub)
	t.subscribeLocked(sub, t.last[sub])
}

// lastDeps returns a copy of sub's most recent dependency set.
func (t *table) lastDeps(sub SourceID) []SourceID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.last[sub])
}

// take removes and returns every subscriber of src, ordered by id (creation
// order). The subscribers' reverse entries for src are cleared too.
func (t *table) take(src SourceID) []SourceID {
	t.mu.Lock()
	defer t.mu.Unlock()

	subs := t.subscribers[src]
	if len(subs) == 0 {
		return nil
	}
	delete(t.subscribers, src)

	out := make([]SourceID, 0, len(subs))
	for sub := range subs {
		out = append(out, sub)
		if own := t.sources[sub]; own != nil {
			delete(own, src)
			if len(own) == 0 {
				delete(t.sources, sub)
			}
		}
	}
	slices.Sort(out)
	return out
}

// release forgets sub entirely: its own subscriptions, the subscriptions
// others hold on it, and its registry entry. It reports whether sub was
// registered.
func (t *table) release(sub SourceID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.nodes[sub]
	t.dropLocked(sub)
	for dependent := range t.subscribers[sub] {
		if own := t.sources[dependent]; own != nil {
			delete(own, sub)
			if len(own) == 0 {
				delete(t.sources, dependent)
			}
		}
	}
	delete(t.subscribers, sub)
	delete(t.nodes, sub)
	delete(t.names, sub)
	delete(t.last, sub)
	for dependent, deps := range t.last {
		t.last[dependent] = slices.DeleteFunc(deps, func(id SourceID) bool { return id == sub })
	}
	return ok
}

// subscribersOf returns a sorted copy of src's subscribers.
func (t *table) subscribersOf(src SourceID) []SourceID {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]SourceID, 0, len(t.subscribers[src]))
	for sub := range t.subscribers[src] {
		out = append(out, sub)
	}
	slices.Sort(out)
	return out
}

// sourcesOf returns a sorted copy of the sources sub is subscribed to.
func (t *table) sourcesOf(sub SourceID) []SourceID {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]SourceID, 0, len(t.sources[sub]))
	for src := range t.sources[sub] {
		out = append(out, src)
	}
	slices.Sort(out)
	return out
}

// Edge is one subscription: Subscriber recomputes when Source changes.
type Edge struct {
	Source         SourceID `json:"source"`
	SourceName     string   `json:"source_name"`
	Subscriber     SourceID `json:"subscriber"`
	SubscriberName string   `json:"subscriber_name"`
}

// edges returns every subscription, ordered by source then subscriber.
func (t *table) edges() []Edge {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Edge
	for src, subs := range t.subscribers {
		for sub := range subs {
			out = append(out, Edge{
				Source:         src,
				SourceName:     t.names[src],
				Subscriber:     sub,
				SubscriberName: t.names[sub],
			})
		}
	}
	slices.SortFunc(out, func(a, b Edge) int {
		if a.Source != b.Source {
			return cmp.Compare(a.Source, b.Source)
		}
		return cmp.Compare(a.Subscriber, b.Subscriber)
	})
	return out
}

// counts returns live subscribers, sources with subscribers and total edges.
func (t *table) counts() (subscribers, sources, edges int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, subs := range t.subscribers {
		edges += len(subs)
	}
	return len(t.nodes), len(t.subscribers), edges
}
