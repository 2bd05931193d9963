// Package diagnostics defines the engine's error taxonomy and the
// multi-line, human-readable messages each member renders to. Every type
// here implements error, so callers that only want the text can rely on
// Error(), and callers that want the structured fields can recover them
// with errors.As.
package diagnostics

import (
	"fmt"
	"strings"
)

// SyntaxError reports malformed reference syntax or a malformed
// template-language construct.
type SyntaxError struct {
	File   string
	Line   int
	Offset int
	Detail string
	Snippet string
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: Template syntax error at line %d: %s\n", e.Line, e.Detail)
	if e.File != "" {
		fmt.Fprintf(&b, "  in file: %s\n", e.File)
	}
	if e.Snippet != "" {
		fmt.Fprintf(&b, "  %s\n", e.Snippet)
	}
	return strings.TrimRight(b.String(), "\n")
}

// MissingFragmentError reports that a slug could not be located in any
// configured search root.
type MissingFragmentError struct {
	Slug          string
	CallerFile    string
	CallerLine    int
	SearchedPaths []string
}

func (e *MissingFragmentError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: Missing fragment: @%s\n", e.Slug)
	if e.CallerFile != "" {
		fmt.Fprintf(&b, "  in file: %s\n", e.CallerFile)
	}
	if e.CallerLine > 0 {
		fmt.Fprintf(&b, "  at line: %d\n", e.CallerLine)
	}
	b.WriteString("  searched paths:\n")
	for _, p := range e.SearchedPaths {
		fmt.Fprintf(&b, "    - %s\n", p)
	}
	return strings.TrimRight(b.String(), "\n")
}

// MissingArgumentError reports that a fragment's declared required argument
// was not bound by its caller and has no default.
type MissingArgumentError struct {
	Name       string
	Fragment   string
	CallerFile string
	CallerLine int
}

func (e *MissingArgumentError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: Missing required argument '%s' for fragment @%s\n", e.Name, e.Fragment)
	if e.CallerFile != "" {
		fmt.Fprintf(&b, "  in file: %s\n", e.CallerFile)
	}
	if e.CallerLine > 0 {
		fmt.Fprintf(&b, "  at line: %d\n", e.CallerLine)
	}
	return strings.TrimRight(b.String(), "\n")
}

// UnboundVariableError reports that an identifier used as an argument value
// has no binding in the caller's scope.
type UnboundVariableError struct {
	Name       string
	CallerFile string
	CallerLine int
}

func (e *UnboundVariableError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: Unbound variable '%s'\n", e.Name)
	if e.CallerFile != "" {
		fmt.Fprintf(&b, "  in file: %s\n", e.CallerFile)
	}
	if e.CallerLine > 0 {
		fmt.Fprintf(&b, "  at line: %d\n", e.CallerLine)
	}
	return strings.TrimRight(b.String(), "\n")
}

// CycleError reports that a slug appears twice on the resolution stack.
// Chain is in stack order, beginning and ending with the repeated slug.
type CycleError struct {
	Chain      []string
	TopFile    string
	OriginLine int
	Paths      []string
}

func (e *CycleError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: Cyclic reference detected: %s\n", joinChain(e.Chain))
	if e.TopFile != "" {
		fmt.Fprintf(&b, "  in file: %s\n", e.TopFile)
	}
	for _, p := range e.Paths {
		fmt.Fprintf(&b, "  - %s\n", p)
	}
	fmt.Fprintf(&b, "  starting at line: %d\n", e.OriginLine)
	return strings.TrimRight(b.String(), "\n")
}

func joinChain(chain []string) string {
	parts := make([]string, len(chain))
	for i, slug := range chain {
		parts[i] = "@" + slug
	}
	return strings.Join(parts, " -> ")
}

// IOError reports a filesystem failure reading a fragment file.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("Error: I/O error reading %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// InvalidSlugError reports an empty, absolute, or otherwise malformed slug.
type InvalidSlugError struct {
	Slug   string
	Reason string
}

func (e *InvalidSlugError) Error() string {
	return fmt.Sprintf("Error: Invalid slug '%s': %s", e.Slug, e.Reason)
}
