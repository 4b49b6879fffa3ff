package reactive

import (
	"errors"
	"fmt"

	sterrors "github.com/vango-dev/statetrack/internal/errors"
)

// Sentinel errors carried by the runtime's panics. Panics raised by this
// package are *sterrors.Error values wrapping one of these, so a recovered
// value can be matched with errors.Is.
var (
	// ErrUninitialized is raised when a selector's value is read before its
	// first computation completed, e.g. from inside its own first run.
	ErrUninitialized = errors.New("reactive: selector read before first computation")

	// ErrDisposed is raised when a disposed selector is tracked or refreshed.
	ErrDisposed = errors.New("reactive: selector disposed")

	// ErrWriteOutsideUpdate is raised when a store-owned field is written
	// outside its store's Update on the writing goroutine.
	ErrWriteOutsideUpdate = errors.New("reactive: store field written outside Update")

	// ErrFrameOrder is raised when tracking frames are popped out of order.
	ErrFrameOrder = errors.New("reactive: tracking frame popped out of order")

	// ErrCascadeLimit is raised in CascadePanic mode when a selector
	// recomputes more than the configured number of times in one flush.
	ErrCascadeLimit = errors.New("reactive: cascade limit exceeded")
)

// fail panics with a structured error for code wrapping sentinel.
// The reported location is the caller of the exported API that detected
// the misuse.
func fail(code string, sentinel error, format string, args ...any) {
	panic(sterrors.New(code).
		Wrap(sentinel).
		WithDetail(fmt.Sprintf(format, args...)).
		WithCaller(2))
}
