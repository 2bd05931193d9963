// Package refactor implements the rename refactorer: given an old and new
// slug, it rewrites every "@slug(...)" reference to the old slug, across
// every fragment in the catalog, byte-for-byte except for the slug itself.
package refactor

import (
	"context"
	"os"
	"strings"

	"github.com/prompy/prompy/internal/catalog"
	"github.com/prompy/prompy/internal/config"
	"github.com/prompy/prompy/internal/fsutil"
	"github.com/prompy/prompy/internal/refparser"
)

// Result reports what a Rename changed.
type Result struct {
	RenamedFile    bool
	UpdatedFiles   []string
	OldPath        string
	NewPath        string
}

// Rename renames oldSlug to newSlug: it renames the fragment's own file (if
// an entry's catalog slug, such as "fragments/x", equals oldSlug) and
// rewrites every reference to oldSlug in every other fragment's body,
// preserving everything about each reference except the slug text itself.
// The file keeps its directory; only its base name changes.
func Rename(ctx context.Context, roots []config.Root, oldSlug, newSlug string) (*Result, error) {
	entries, err := catalog.Enumerate(ctx, roots)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	for _, e := range entries {
		if e.Slug != oldSlug {
			continue
		}
		newPath, err := renamedPath(e.Path, oldSlug, newSlug)
		if err != nil {
			return nil, err
		}
		if err := os.Rename(e.Path, newPath); err != nil {
			return nil, err
		}
		result.RenamedFile = true
		result.OldPath = e.Path
		result.NewPath = newPath
		break
	}

	for _, e := range entries {
		if e.Slug == oldSlug {
			continue
		}
		changed, err := rewriteFile(e.Path, oldSlug, newSlug)
		if err != nil {
			return nil, err
		}
		if changed {
			result.UpdatedFiles = append(result.UpdatedFiles, e.Path)
		}
	}

	return result, nil
}

// rewriteFile splices every reference to oldSlug in path's content to
// newSlug, using Token.SlugEnd so only the slug text itself changes; it
// writes back only if at least one reference was found. oldSlug may be a
// reference slug ("x") or a catalog slug ("fragments/x"); a "fragments/"
// prefix on newSlug is dropped, since references are written without it.
func rewriteFile(path, oldSlug, newSlug string) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	text := string(raw)

	tokens, err := refparser.FindAll(text)
	if err != nil {
		return false, nil // a malformed file is left untouched; render will report the syntax error
	}

	var matches []*refparser.Token
	for _, tok := range tokens {
		if tok.Slug == oldSlug || "fragments/"+tok.Slug == oldSlug {
			matches = append(matches, tok)
		}
	}
	if len(matches) == 0 {
		return false, nil
	}

	rewritten := spliceSlug(text, matches, strings.TrimPrefix(newSlug, "fragments/"))
	if err := fsutil.WriteFileAtomic(path, []byte(rewritten), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// spliceSlug applies every match's slug replacement in one pass, processing
// matches in reverse source order so earlier offsets stay valid as later
// ones are rewritten.
func spliceSlug(text string, matches []*refparser.Token, newSlug string) string {
	for i := len(matches) - 1; i >= 0; i-- {
		tok := matches[i]
		text = text[:tok.Start] + "@" + newSlug + text[tok.SlugEnd:tok.End] + text[tok.End:]
	}
	return text
}

func renamedPath(oldPath, oldSlug, newSlug string) (string, error) {
	dir, oldBase, newBase := splitSlugBase(oldPath, oldSlug, newSlug)
	if oldBase == "" {
		return oldPath, nil
	}
	return dir + newBase, nil
}

// splitSlugBase derives the new file path's basename from the slug rename,
// preserving everything about the path except the final path segment that
// corresponds to the slug's own trailing component.
func splitSlugBase(oldPath, oldSlug, newSlug string) (dir, oldBase, newBase string) {
	suffix := ".md"
	if len(oldPath) < len(suffix) || oldPath[len(oldPath)-len(suffix):] != suffix {
		return "", "", ""
	}
	withoutExt := oldPath[:len(oldPath)-len(suffix)]

	oldLast := lastSegment(oldSlug)
	newLast := lastSegment(newSlug)
	if len(withoutExt) < len(oldLast) {
		return "", "", ""
	}
	dir = withoutExt[:len(withoutExt)-len(oldLast)]
	return dir, oldLast, newLast + suffix
}

func lastSegment(slug string) string {
	for i := len(slug) - 1; i >= 0; i-- {
		if slug[i] == '/' {
			return slug[i+1:]
		}
	}
	return slug
}
