package fragment

import (
	"context"
	"os"
	"path/filepath"

	"github.com/prompy/prompy/internal/ctxlog"
	"github.com/prompy/prompy/internal/diagnostics"
)

// Loader reads and parses fragment files, caching by canonicalized absolute
// path. A Loader is scoped to a single render call; it is not safe to share
// across concurrent renders without external synchronization, which the
// engine never does (the engine is single-threaded and synchronous).
type Loader struct {
	cache map[string]*Parsed
}

// NewLoader returns a Loader with an empty cache.
func NewLoader() *Loader {
	return &Loader{cache: make(map[string]*Parsed)}
}

// Load reads path, splits frontmatter from body, and returns the parsed
// fragment for slug. Repeated loads of the same path within the lifetime of
// this Loader return the identical *Parsed value.
func (l *Loader) Load(ctx context.Context, path, slug string) (*Parsed, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &diagnostics.IOError{Path: path, Err: err}
	}

	if cached, ok := l.cache[abs]; ok {
		ctxlog.FromContext(ctx).Debug("fragment cache hit", "path", abs)
		return cached, nil
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, &diagnostics.IOError{Path: abs, Err: err}
	}

	metaText, body, _ := splitFrontmatter(string(raw))
	description, categories, args, err := parseMetadata(metaText)
	if err != nil {
		return nil, &diagnostics.SyntaxError{
			File:   abs,
			Line:   1,
			Detail: "invalid frontmatter: " + err.Error(),
		}
	}

	parsed := &Parsed{
		Path:        abs,
		Slug:        slug,
		Description: description,
		Categories:  categories,
		Arguments:   args,
		Body:        body,
	}
	l.cache[abs] = parsed

	ctxlog.FromContext(ctx).Debug("loaded fragment", "slug", slug, "path", abs, "argCount", len(args))
	return parsed, nil
}
