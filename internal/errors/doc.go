// Package errors provides structured, actionable error values for statetrack.
//
// Every error carries a short code (e.g. "ST003") registered in a code table
// with a category, a one-line message and a longer explanation. Programming
// errors raised by the reactive runtime are panicked as *Error values that
// wrap a sentinel from package reactive, so callers that recover can still
// use errors.Is.
//
// # Error Categories
//
//   - runtime: misuse of the reactive runtime (ordering bugs, writes outside
//     an update, runaway cascades)
//   - config: invalid or unreadable configuration
//   - cli: command line usage errors
//
// # Usage
//
//	err := errors.New("ST003").
//	    WithDetail(`field "cellSize" of store "grid"`).
//	    WithSuggestion("Wrap the write in store.Update(func() { ... })")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR ST003: Store field written outside its store's Update
//	//
//	//   field "cellSize" of store "grid"
//	//
//	//   Hint: Wrap the write in store.Update(func() { ... })
package errors
