package config

import "path/filepath"

// PathEntry is the §3 data-model "Path entry": {path, package?, full_path}.
// Invariant: full_path is absolute iff valid; if package is set,
// full_path = resolve(package) / path.
type PathEntry struct {
	Path     string
	Package  string // empty if not package-relative
	FullPath string
}

// NewPathEntry resolves a raw path (optionally package-relative) into a
// PathEntry, using resolver to turn a package handle into its filesystem
// root.
func NewPathEntry(path, pkg string, resolver PackageResolver) PathEntry {
	e := PathEntry{Path: path, Package: pkg}
	if pkg != "" && resolver != nil {
		if root, ok := resolver.ResolvePackage(pkg); ok {
			e.FullPath = filepath.Clean(filepath.Join(root, path))
			return e
		}
	}
	if filepath.IsAbs(path) {
		e.FullPath = filepath.Clean(path)
	}
	return e
}

// Valid reports whether FullPath was successfully resolved to an absolute
// path.
func (e PathEntry) Valid() bool { return filepath.IsAbs(e.FullPath) }
