// Package scope holds the variable bindings visible while a fragment body
// is being rendered. Scopes nest for block constructs within one fragment
// (a "{% for %}" loop variable shadows an outer binding of the same name)
// but never cross a fragment boundary: resolving a "@slug(...)" reference
// always starts its callee from a fresh, parentless scope built from the
// bound arguments alone.
package scope

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/prompy/prompy/internal/filters"
)

// Scope is a chain of variable frames, innermost first.
type Scope struct {
	vars   map[string]cty.Value
	parent *Scope
}

// New returns an empty, parentless scope.
func New() *Scope {
	return &Scope{vars: make(map[string]cty.Value)}
}

// Child returns a new scope nested under s; lookups that miss in the child
// fall through to s.
func (s *Scope) Child() *Scope {
	return &Scope{vars: make(map[string]cty.Value), parent: s}
}

// Set binds name to v in this scope frame.
func (s *Scope) Set(name string, v cty.Value) {
	s.vars[name] = v
}

// Get looks up name, walking outward through parent frames.
func (s *Scope) Get(name string) (cty.Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return cty.NilVal, false
}

// EvalContext flattens the scope chain into an *hcl.EvalContext suitable for
// hclsyntax expression evaluation, with the filter function library
// attached. Inner frames shadow outer ones.
func (s *Scope) EvalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for cur := s; cur != nil; cur = cur.parent {
		for k, v := range cur.vars {
			if _, exists := vars[k]; !exists {
				vars[k] = v
			}
		}
	}
	return &hcl.EvalContext{
		Variables: vars,
		Functions: filters.All(),
	}
}
