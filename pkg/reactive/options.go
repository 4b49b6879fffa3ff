package reactive

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultMaxCascade is the default number of times a single selector may
// recompute within one flush before the tracker treats the flush as a
// runaway cascade.
const DefaultMaxCascade = 100

// CascadeMode determines behavior when the cascade limit is exceeded.
type CascadeMode int

const (
	// CascadeThrottle drops the remaining queued work and logs an error
	// (default).
	CascadeThrottle CascadeMode = iota

	// CascadePanic panics with ErrCascadeLimit.
	CascadePanic
)

// String returns the configuration spelling of the mode.
func (m CascadeMode) String() string {
	switch m {
	case CascadeThrottle:
		return "throttle"
	case CascadePanic:
		return "panic"
	default:
		return fmt.Sprintf("CascadeMode(%d)", int(m))
	}
}

// ParseCascadeMode parses "throttle" or "panic" (case-insensitive).
func ParseCascadeMode(s string) (CascadeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "throttle":
		return CascadeThrottle, nil
	case "panic":
		return CascadePanic, nil
	default:
		return 0, fmt.Errorf("unknown cascade mode %q", s)
	}
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger used for debug and error records.
// Default: a logger that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithHooks sets the instrumentation hooks. Default: NopHooks.
func WithHooks(h Hooks) Option {
	return func(t *Tracker) {
		if h != nil {
			t.hooks = h
		}
	}
}

// WithMaxCascade sets how many times one selector may recompute within a
// single flush. Values < 1 are ignored.
func WithMaxCascade(n int) Option {
	return func(t *Tracker) {
		if n >= 1 {
			t.maxCascade = n
		}
	}
}

// WithCascadeMode sets the behavior when the cascade limit is exceeded.
func WithCascadeMode(m CascadeMode) Option {
	return func(t *Tracker) {
		t.cascadeMode = m
	}
}

// selectorConfig holds per-selector settings.
type selectorConfig struct {
	name         string
	alwaysNotify bool
}

// SelectorOption configures a Selector.
type SelectorOption func(*selectorConfig)

// WithName labels the selector in logs, metrics and the dependency graph.
func WithName(name string) SelectorOption {
	return func(c *selectorConfig) {
		c.name = name
	}
}

// WithAlwaysNotify makes every recomputation count as a change, even when
// the new value equals the cached one.
func WithAlwaysNotify() SelectorOption {
	return func(c *selectorConfig) {
		c.alwaysNotify = true
	}
}

// batchConfig holds per-batch settings.
type batchConfig struct {
	alwaysNotify bool
}

// BatchOption configures a Tracker.Batch or Store.Update call.
type BatchOption func(*batchConfig)

// BatchAlwaysNotify makes every recomputation in the flush that processes
// the batch count as a change, as if each selector had WithAlwaysNotify.
// Downstream selectors and observers are notified even when values are
// equal.
func BatchAlwaysNotify() BatchOption {
	return func(c *batchConfig) {
		c.alwaysNotify = true
	}
}
