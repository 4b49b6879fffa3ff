package telemetry

import (
	"time"

	"github.com/vango-dev/statetrack/pkg/reactive"
)

// Multi fans every event out to hooks, in order. Nil entries are skipped.
func Multi(hooks ...reactive.Hooks) reactive.Hooks {
	var hs multi
	for _, h := range hooks {
		if h != nil {
			hs = append(hs, h)
		}
	}
	if len(hs) == 1 {
		return hs[0]
	}
	return hs
}

type multi []reactive.Hooks

func (m multi) FlushStarted(scope string) func(int) {
	dones := make([]func(int), len(m))
	for i, h := range m {
		dones[i] = h.FlushStarted(scope)
	}
	return func(recomputed int) {
		for _, done := range dones {
			done(recomputed)
		}
	}
}

func (m multi) Recomputed(selector string, elapsed time.Duration, changed bool) {
	for _, h := range m {
		h.Recomputed(selector, elapsed, changed)
	}
}

func (m multi) Disposed(selector string) {
	for _, h := range m {
		h.Disposed(selector)
	}
}

func (m multi) CascadeExceeded(selector string, runs int) {
	for _, h := range m {
		h.CascadeExceeded(selector, runs)
	}
}
