package engine

import (
	"context"
	"io"
	"log/slog"

	"github.com/prompy/prompy/internal/catalog"
	"github.com/prompy/prompy/internal/config"
	"github.com/prompy/prompy/internal/ctxlog"
	"github.com/prompy/prompy/internal/refactor"
	"github.com/prompy/prompy/internal/resolver"
)

// Options configures a new Engine.
type Options struct {
	// Project and Language drive the "project/" and "language/"|"environment/"
	// slug sigil rewrites; either may be empty.
	Project  string
	Language string
	// StartDir is where the search for a project-local ".prompy" override
	// root begins; typically the caller's current working directory.
	StartDir string

	LogLevel  string
	LogFormat string
}

// Engine is the single entry point an outer shell (the CLI, or any future
// editor-invocation helper) needs: it owns the logger, the resolved search
// roots, and exposes the three operations the whole system exists to
// perform.
type Engine struct {
	logger   *slog.Logger
	project  string
	language string
	roots    []config.Root
}

// New resolves search roots from opts.StartDir and returns a ready Engine.
func New(outW io.Writer, opts Options) (*Engine, error) {
	logger := newLogger(opts.LogLevel, opts.LogFormat, outW)

	roots, err := config.BuildRoots(opts.StartDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved search roots", "count", len(roots))

	return &Engine{
		logger:   logger,
		project:  opts.Project,
		language: opts.Language,
		roots:    roots,
	}, nil
}

func (e *Engine) context() context.Context {
	return ctxlog.WithLogger(context.Background(), e.logger)
}

// Render expands slug and every fragment it transitively references into
// one rendered string.
func (e *Engine) Render(ctx context.Context, slug string, args map[string]string) (string, error) {
	r := resolver.New(e.project, e.language, e.roots)
	return r.Render(ctx, slug, args)
}

// ListFragments enumerates the catalog, optionally narrowed by category
// and/or slug prefix.
func (e *Engine) ListFragments(ctx context.Context, category, slugPrefix string) ([]catalog.Entry, error) {
	entries, err := catalog.Enumerate(ctx, e.roots)
	if err != nil {
		return nil, err
	}
	return catalog.Filter(entries, category, slugPrefix), nil
}

// ValidateCatalog runs the upfront static cycle check across every fragment
// currently visible in the catalog.
func (e *Engine) ValidateCatalog(ctx context.Context) error {
	entries, err := catalog.Enumerate(ctx, e.roots)
	if err != nil {
		return err
	}
	return catalog.ValidateNoCycles(ctx, entries)
}

// MoveFragment renames a fragment and rewrites every reference to it.
func (e *Engine) MoveFragment(ctx context.Context, oldSlug, newSlug string) (*refactor.Result, error) {
	return refactor.Rename(ctx, e.roots, oldSlug, newSlug)
}

// Logger returns the engine's logger, primarily for the CLI shell to reuse.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}
