package config

import (
	"os"
	"path/filepath"
)

const appDirName = "prompy"

// ConfigDir returns the user configuration root for prompy: $PROMPY_CONFIG_DIR
// if set, else $XDG_CONFIG_HOME/prompy, else ~/.config/prompy. It does not
// create the directory; callers that need it to exist do so explicitly.
func ConfigDir() (string, error) {
	if dir := os.Getenv("PROMPY_CONFIG_DIR"); dir != "" {
		return expandHome(dir)
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appDirName), nil
}

// PromptsDir returns the prompts/ subtree of the user configuration root,
// the lower-precedence of the two search roots the resolver probes.
func PromptsDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "prompts"), nil
}

func expandHome(path string) (string, error) {
	if path == "~" || len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
