// Package engine wires the fragment catalog, loader, and resolver together
// behind the three operations an outer shell (the CLI, or any future
// editor-invocation helper) actually calls: Render, ListFragments, and
// MoveFragment.
package engine
