// Package xdg resolves omni's filesystem roots per spec.md §6: env var
// override, then XDG base dir, then a built-in default, with "~/" expansion.
package xdg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// expand replaces a leading "~/" with the current user's home directory.
func expand(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	if len(path) == 1 || path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

func resolve(envVar, xdgVar, xdgSuffix, fallback string) string {
	if v := os.Getenv(envVar); v != "" {
		return expand(v)
	}
	if v := os.Getenv(xdgVar); v != "" {
		return filepath.Join(expand(v), xdgSuffix)
	}
	return expand(fallback)
}

// ConfigHome returns OMNI_CONFIG_HOME, defaulting to $XDG_CONFIG_HOME/omni.
func ConfigHome() string {
	return resolve("OMNI_CONFIG_HOME", "XDG_CONFIG_HOME", "omni", "~/.config/omni")
}

// DataHome returns OMNI_DATA_HOME, defaulting to $XDG_DATA_HOME/omni.
func DataHome() string {
	return resolve("OMNI_DATA_HOME", "XDG_DATA_HOME", "omni", "~/.local/share/omni")
}

// StateHome returns OMNI_STATE_HOME, defaulting to $XDG_STATE_HOME/omni.
func StateHome() string {
	return resolve("OMNI_STATE_HOME", "XDG_STATE_HOME", "omni", "~/.local/state/omni")
}

// CacheHome returns OMNI_CACHE_HOME, defaulting to $XDG_CACHE_HOME/omni.
func CacheHome() string {
	return resolve("OMNI_CACHE_HOME", "XDG_CACHE_HOME", "omni", "~/.cache/omni")
}

// TmpDir returns OMNI_TMPDIR, defaulting to $TMPDIR/omni.<user>.
func TmpDir() string {
	if v := os.Getenv("OMNI_TMPDIR"); v != "" {
		return expand(v)
	}
	tmp := os.Getenv("TMPDIR")
	if tmp == "" {
		tmp = os.TempDir()
	}
	user := os.Getenv("USER")
	if user == "" {
		user = "unknown"
	}
	return filepath.Join(expand(tmp), fmt.Sprintf("omni.%s", user))
}

// ShimsDir is DATA_HOME/shims, the directory of thin re-entrant wrapper
// binaries that dispatch back into the engine.
func ShimsDir() string {
	return filepath.Join(DataHome(), "shims")
}

// MiseRoot is DATA_HOME/mise, the tool-runtime's managed install tree.
func MiseRoot() string {
	return filepath.Join(DataHome(), "mise")
}

// StateRoot is an alias kept distinct from MiseRoot for non-mise backend
// install trees (ghrelease/cargo-install/go-install), rooted under
// OMNI_STATE_HOME per spec.md §4.3's backend table.
func StateRoot(subdir string) string {
	return filepath.Join(StateHome(), subdir)
}

// EnsureDir creates dir (and parents) with 0o755 permissions if missing.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
