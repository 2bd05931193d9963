// Package cli is a thin flag-parsing entry point wiring the engine's three
// external operations (render, list, move) to the command line. Deep
// subcommand dispatch, clipboard integration, and editor invocation are
// out of scope; this package exists only for manual smoke-testing.
package cli
