// Package catalog enumerates every fragment visible across a set of search
// roots, resolving duplicate slugs by root precedence, and validates that
// the full set of static "@slug(...)" references contains no cycle.
package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/prompy/prompy/internal/config"
	"github.com/prompy/prompy/internal/dag"
	"github.com/prompy/prompy/internal/diagnostics"
	"github.com/prompy/prompy/internal/fragment"
	"github.com/prompy/prompy/internal/fsutil"
	"github.com/prompy/prompy/internal/refparser"
)

// Entry is one fragment's catalog-visible metadata.
type Entry struct {
	Slug        string
	Path        string
	Description string
	Categories  []string
	Root        config.Root
}

// Enumerate walks every search root, in precedence order, and returns one
// Entry per distinct slug. When the same slug exists under more than one
// root, the highest-precedence root (the first in roots) wins; lower
// precedence occurrences are dropped silently, the same shadowing rule the
// resolver itself applies.
func Enumerate(ctx context.Context, roots []config.Root) ([]Entry, error) {
	loader := fragment.NewLoader()
	bySlug := make(map[string]Entry)

	for _, root := range roots {
		files, err := fsutil.FindFilesByExtension(root.Path, ".md")
		if err != nil {
			continue // a root that doesn't exist yet contributes nothing
		}

		for _, file := range files {
			slug, ok := slugFromPath(root.Path, file)
			if !ok {
				continue
			}
			if _, exists := bySlug[slug]; exists {
				continue
			}

			parsed, err := loader.Load(ctx, file, slug)
			if err != nil {
				return nil, err
			}

			bySlug[slug] = Entry{
				Slug:        slug,
				Path:        file,
				Description: parsed.Description,
				Categories:  parsed.Categories,
				Root:        root,
			}
		}
	}

	entries := make([]Entry, 0, len(bySlug))
	for _, e := range bySlug {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Slug < entries[j].Slug })
	return entries, nil
}

// slugFromPath reverses the slugpath sigil rewrite well enough for catalog
// display purposes: it strips the root and the .md suffix and leaves the
// remaining relative path, including any fragments/, projects/<x>/, or
// languages/<x>/ prefix, exactly as it sits on disk. This is a display
// slug, not necessarily the exact sigil form a caller would type; callers
// that need the canonical @slug form for a project/language fragment must
// already know which project or language they are asking about.
func slugFromPath(rootPath, filePath string) (string, bool) {
	rel := strings.TrimPrefix(filePath, rootPath)
	rel = strings.TrimPrefix(rel, "/")
	rel = strings.TrimSuffix(rel, ".md")
	if rel == "" {
		return "", false
	}
	return rel, true
}

// Filter narrows entries to those matching a non-empty category (exact
// match against any of the fragment's declared categories) and/or a
// slug-prefix filter. An empty filter value means "no constraint".
func Filter(entries []Entry, category, slugPrefix string) []Entry {
	var out []Entry
	for _, e := range entries {
		if slugPrefix != "" && !strings.HasPrefix(e.Slug, slugPrefix) {
			continue
		}
		if category != "" && !containsCategory(e.Categories, category) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func containsCategory(categories []string, want string) bool {
	for _, c := range categories {
		if c == want {
			return true
		}
	}
	return false
}

// ValidateNoCycles builds a static reference graph from every entry's body
// (every top-level "@slug(...)" occurrence FindAll can see, regardless of
// whether the evaluator would ever actually reach it at render time) and
// runs dag.Graph.DetectCycles over it. This catches cycles ahead of any
// particular render, independent of the resolver's own runtime
// resolution-stack check, which only ever sees the references a given
// render actually traverses. A plain reference "@x" is matched against the
// catalog slug "fragments/x"; references carrying a project/, language/ or
// environment/ sigil are not followed, since the catalog holds no project
// or language name to rewrite them with.
func ValidateNoCycles(ctx context.Context, entries []Entry) error {
	g := dag.New()
	for _, e := range entries {
		g.AddNode(e.Slug)
	}

	loader := fragment.NewLoader()
	for _, e := range entries {
		parsed, err := loader.Load(ctx, e.Path, e.Slug)
		if err != nil {
			return err
		}

		refs, err := refparser.FindAll(parsed.Body)
		if err != nil {
			continue // a malformed reference is a render-time syntax error, not a cycle
		}

		for _, ref := range refs {
			target := ref.Slug
			if !strings.HasPrefix(target, "project/") && !strings.HasPrefix(target, "language/") && !strings.HasPrefix(target, "environment/") {
				target = "fragments/" + target
			}
			if !slugExists(entries, target) || target == e.Slug {
				continue
			}
			_ = g.AddEdge(target, e.Slug)
		}
	}

	if err := g.DetectCycles(); err != nil {
		return &diagnostics.CycleError{Chain: []string{err.Error()}}
	}
	return nil
}

func slugExists(entries []Entry, slug string) bool {
	for _, e := range entries {
		if e.Slug == slug {
			return true
		}
	}
	return false
}
