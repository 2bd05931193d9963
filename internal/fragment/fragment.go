// Package fragment reads a prompt file from disk, splits its optional YAML
// frontmatter block from its template body, and caches the result by
// canonicalized absolute path so that a single render never re-parses the
// same file twice.
package fragment

import (
	"fmt"

	"github.com/prompy/prompy/internal/config"
)

// Parsed is the in-memory form of one fragment file: its source path, the
// metadata it declared, its raw template body, and the slug it was loaded
// for (which may differ from any slug baked into the file itself — the
// resolver always knows the slug it used to find the path).
type Parsed struct {
	Path        string
	Slug        string
	Description string
	Categories  []string
	Arguments   []config.ArgumentDefinition
	Body        string
}

// Argument looks up a declared argument by name.
func (p *Parsed) Argument(name string) (config.ArgumentDefinition, bool) {
	for _, a := range p.Arguments {
		if a.Name == name {
			return a, true
		}
	}
	return config.ArgumentDefinition{}, false
}

func (p *Parsed) String() string {
	return fmt.Sprintf("fragment(slug=%s, path=%s, args=%d)", p.Slug, p.Path, len(p.Arguments))
}
