package config

import (
	"os"
	"path/filepath"
)

// overrideDirName is the project-local directory that, if found, becomes the
// highest-precedence search root.
const overrideDirName = ".prompy"

// FindOverrideRoot walks upward from startDir looking for a .prompy
// directory, the same way a VCS root is located. It returns the first match
// and true, or "" and false if none is found before reaching the filesystem
// root. This is a single-marker directory walk, unrelated to the
// multi-signal project/language detection performed outside this package.
func FindOverrideRoot(startDir string) (string, bool) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false
	}

	for {
		candidate := filepath.Join(dir, overrideDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// BuildRoots assembles the ordered root list the slug resolver consumes:
// the project-local override root first (if one is found above startDir),
// then the user configuration root's prompts/ subtree.
func BuildRoots(startDir string) ([]Root, error) {
	var roots []Root

	if override, ok := FindOverrideRoot(startDir); ok {
		roots = append(roots, Root{Kind: RootProject, Path: override})
	}

	userRoot, err := PromptsDir()
	if err != nil {
		return nil, err
	}
	roots = append(roots, Root{Kind: RootUser, Path: userRoot})

	return roots, nil
}
