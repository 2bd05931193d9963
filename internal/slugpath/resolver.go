// Package slugpath maps a fragment slug to a concrete file path under one
// of several search roots, rewriting the slug's leading sigil
// (project/, language/, environment/) into the on-disk subtree it belongs
// under.
package slugpath

import (
	"path"
	"strings"

	"github.com/prompy/prompy/internal/config"
	"github.com/prompy/prompy/internal/diagnostics"
)

// Resolve finds the first existing file across roots, in order, for slug.
// project and language may be empty; a sigil that needs the corresponding
// empty value is simply skipped for that root, contributing neither a
// probed path nor a match.
//
// On success it returns the matching path. On failure it returns a
// *diagnostics.MissingFragmentError carrying every path it probed, in probe
// order, for diagnostic reporting.
func Resolve(slug, project, language string, roots []config.Root) (string, error) {
	if err := Validate(slug); err != nil {
		return "", err
	}

	var probed []string
	for _, root := range roots {
		rel, ok := rewrite(slug, project, language)
		if !ok {
			continue
		}
		candidate := path.Join(root.Path, rel) + ".md"
		probed = append(probed, candidate)
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	return "", &diagnostics.MissingFragmentError{
		Slug:         slug,
		SearchedPaths: probed,
	}
}

// rewrite applies the sigil rules, returning the relative path (without
// root or .md suffix) and whether the rewrite is usable at all given the
// project/language values on hand.
func rewrite(slug, project, language string) (string, bool) {
	switch {
	case hasSigil(slug, "project/"):
		if project == "" {
			return "", false
		}
		rest := strings.TrimPrefix(slug, "project/")
		return path.Join("projects", project, rest), true

	case hasSigil(slug, "language/"):
		if language == "" {
			return "", false
		}
		rest := strings.TrimPrefix(slug, "language/")
		return path.Join("languages", language, rest), true

	case hasSigil(slug, "environment/"):
		if language == "" {
			return "", false
		}
		rest := strings.TrimPrefix(slug, "environment/")
		return path.Join("languages", language, rest), true

	default:
		return path.Join("fragments", slug), true
	}
}

func hasSigil(slug, sigil string) bool {
	return strings.HasPrefix(slug, sigil)
}

// Validate rejects slugs that can never denote a legitimate fragment: empty,
// absolute, or carrying a ".." traversal segment.
func Validate(slug string) error {
	if slug == "" {
		return &diagnostics.InvalidSlugError{Slug: slug, Reason: "slug is empty"}
	}
	if strings.HasPrefix(slug, "/") {
		return &diagnostics.InvalidSlugError{Slug: slug, Reason: "slug must not be absolute"}
	}
	for _, seg := range strings.Split(slug, "/") {
		if seg == ".." {
			return &diagnostics.InvalidSlugError{Slug: slug, Reason: "slug must not contain '..'"}
		}
	}
	return nil
}
