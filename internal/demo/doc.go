// Package demo holds small canvas-editor stores used by the CLI and the
// inspector to exercise the reactive runtime: a grid with a snapping cell
// size, and an ordered collection of items with a pending (preview) copy
// that temporarily replaces the committed one.
package demo
