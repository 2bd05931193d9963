// Package resolver implements recursive fragment expansion: given a top
// level slug, it loads the fragment, binds its declared arguments, renders
// its body, and recurses into every "@slug(...)" reference the body's
// template expressions contain, detecting cycles along the way.
package resolver

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/prompy/prompy/internal/config"
	"github.com/prompy/prompy/internal/ctxlog"
	"github.com/prompy/prompy/internal/diagnostics"
	"github.com/prompy/prompy/internal/evaluator"
	"github.com/prompy/prompy/internal/fragment"
	"github.com/prompy/prompy/internal/refparser"
	"github.com/prompy/prompy/internal/scope"
	"github.com/prompy/prompy/internal/slugpath"
)

// Resolver holds everything needed to expand fragments for one render: the
// search configuration, a fragment loader (and its cache), and the
// resolution stack used for cycle detection. A Resolver is built fresh for
// each top-level render call; it is not reused across renders.
type Resolver struct {
	Loader   *fragment.Loader
	Project  string
	Language string
	Roots    []config.Root

	stack []frame
}

type frame struct {
	slug string
	path string
}

// New returns a Resolver configured with the given search roots and
// project/language context, backed by a fresh fragment loader.
func New(project, language string, roots []config.Root) *Resolver {
	return &Resolver{
		Loader:   fragment.NewLoader(),
		Project:  project,
		Language: language,
		Roots:    roots,
	}
}

// Render resolves slug as a top-level render target: keyword arguments come
// in as plain strings, and no positional arguments are passed (there is no
// caller scope at the top level, since nothing refers to the thing being
// rendered). A synthetic "<top>" frame sits at the bottom of the resolution
// stack for the duration of the call, so a cycle chain starts with "<top>".
func (r *Resolver) Render(ctx context.Context, slug string, args map[string]string) (string, error) {
	r.stack = append(r.stack, frame{slug: "<top>"})
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()

	keyword := make([]refparser.KeywordArg, 0, len(args))
	for name, value := range args {
		keyword = append(keyword, refparser.KeywordArg{
			Name:  name,
			Value: refparser.ArgValue{Kind: refparser.Literal, Text: value},
		})
	}

	return r.resolve(ctx, slug, nil, keyword, scope.New(), "", 0)
}

// ResolveReference implements evaluator.ReferenceResolver: it is called by
// the template evaluator whenever a "{{ ... }}" body is, in its entirety, a
// "@slug(...)" reference.
func (r *Resolver) ResolveReference(ctx context.Context, tok *refparser.Token, callerScope *scope.Scope) (string, error) {
	var callerFile string
	if len(r.stack) > 0 {
		callerFile = r.stack[len(r.stack)-1].path
	}
	return r.resolve(ctx, tok.Slug, tok.Positional, tok.Keyword, callerScope, callerFile, tok.Line)
}

func (r *Resolver) resolve(ctx context.Context, slug string, positional []refparser.ArgValue, keyword []refparser.KeywordArg, callerScope *scope.Scope, callerFile string, callerLine int) (string, error) {
	path, err := slugpath.Resolve(slug, r.Project, r.Language, r.Roots)
	if err != nil {
		if mf, ok := err.(*diagnostics.MissingFragmentError); ok {
			mf.CallerFile = callerFile
			mf.CallerLine = callerLine
		}
		return "", err
	}

	for _, f := range r.stack {
		if f.path == path {
			chain := make([]string, 0, len(r.stack)+1)
			for _, fr := range r.stack {
				chain = append(chain, fr.slug)
			}
			chain = append(chain, slug)
			return "", &diagnostics.CycleError{
				Chain:      chain,
				TopFile:    callerFile,
				OriginLine: callerLine,
			}
		}
	}

	frag, err := r.Loader.Load(ctx, path, slug)
	if err != nil {
		return "", err
	}

	newScope, err := r.bindArguments(ctx, frag, positional, keyword, callerScope, callerFile, callerLine)
	if err != nil {
		return "", err
	}

	r.stack = append(r.stack, frame{slug: slug, path: path})
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()

	ctxlog.FromContext(ctx).Debug("resolving fragment", "slug", slug, "path", path, "depth", len(r.stack))

	nodes, err := evaluator.Parse(frag.Body)
	if err != nil {
		return "", &diagnostics.SyntaxError{File: frag.Path, Detail: err.Error()}
	}

	return evaluator.Evaluate(ctx, nodes, newScope, r)
}

// bindArguments builds the fresh, parentless scope a fragment body
// evaluates in: positional arguments bind to declared arguments in
// declaration order, keyword arguments override by name, declared
// arguments with no bound value fall back to their default (or raise
// MissingArgumentError if required), and keyword arguments that name no
// declared argument are still bound directly into the new scope rather than
// rejected or forwarded further.
func (r *Resolver) bindArguments(ctx context.Context, frag *fragment.Parsed, positional []refparser.ArgValue, keyword []refparser.KeywordArg, callerScope *scope.Scope, callerFile string, callerLine int) (*scope.Scope, error) {
	bound := make(map[string]cty.Value)

	for i, av := range positional {
		if i >= len(frag.Arguments) {
			return nil, &diagnostics.SyntaxError{
				File:   frag.Path,
				Detail: fmt.Sprintf("fragment @%s declares only %d argument(s), got %d positional", frag.Slug, len(frag.Arguments), len(positional)),
			}
		}
		val, err := r.evalArgValue(ctx, av, callerScope, callerFile, callerLine)
		if err != nil {
			return nil, err
		}
		bound[frag.Arguments[i].Name] = val
	}

	extra := make(map[string]cty.Value)
	for _, kw := range keyword {
		val, err := r.evalArgValue(ctx, kw.Value, callerScope, callerFile, callerLine)
		if err != nil {
			return nil, err
		}
		if _, declared := frag.Argument(kw.Name); declared {
			bound[kw.Name] = val
		} else {
			extra[kw.Name] = val
		}
	}

	newScope := scope.New()
	for _, def := range frag.Arguments {
		val, ok := bound[def.Name]
		switch {
		case ok:
			newScope.Set(def.Name, val)
		case def.Default != nil:
			newScope.Set(def.Name, cty.StringVal(*def.Default))
		default:
			return nil, &diagnostics.MissingArgumentError{
				Name:       def.Name,
				Fragment:   frag.Slug,
				CallerFile: callerFile,
				CallerLine: callerLine,
			}
		}
	}
	for name, val := range extra {
		newScope.Set(name, val)
	}

	return newScope, nil
}

func (r *Resolver) evalArgValue(ctx context.Context, av refparser.ArgValue, callerScope *scope.Scope, callerFile string, callerLine int) (cty.Value, error) {
	switch av.Kind {
	case refparser.Literal:
		return cty.StringVal(av.Text), nil
	case refparser.Identifier:
		val, ok := callerScope.Get(av.Text)
		if !ok {
			return cty.NilVal, &diagnostics.UnboundVariableError{
				Name:       av.Text,
				CallerFile: callerFile,
				CallerLine: callerLine,
			}
		}
		return val, nil
	case refparser.Reference:
		rendered, err := r.resolve(ctx, av.Reference.Slug, av.Reference.Positional, av.Reference.Keyword, callerScope, callerFile, callerLine)
		if err != nil {
			return cty.NilVal, err
		}
		return cty.StringVal(rendered), nil
	default:
		return cty.NilVal, fmt.Errorf("resolver: unhandled argument kind %v", av.Kind)
	}
}
