package config

import (
	"os"
	"path/filepath"
	"strings"
)

// matchesTransformPath reports whether keypath is on the spec.md §4.1
// path-transform allow-list: path.append.*, path.prepend.*, org.*.worktree,
// cache.path, suggest_clone.template_file, suggest_config.template_file,
// and the root worktree key.
func matchesTransformPath(keypath []string) bool {
	switch len(keypath) {
	case 1:
		return keypath[0] == "worktree"
	case 2:
		if keypath[0] == "cache" && keypath[1] == "path" {
			return true
		}
		if keypath[0] == "suggest_clone" && keypath[1] == "template_file" {
			return true
		}
		if keypath[0] == "suggest_config" && keypath[1] == "template_file" {
			return true
		}
		return false
	case 3:
		if keypath[0] == "org" && keypath[2] == "worktree" {
			return true
		}
		if (keypath[0] == "path") && (keypath[1] == "append" || keypath[1] == "prepend") {
			return true
		}
		return false
	default:
		// path.append.* / path.prepend.* can nest arbitrarily deep under a
		// named list key; treat any path under path.append/path.prepend as
		// a transform target.
		if len(keypath) >= 3 && keypath[0] == "path" && (keypath[1] == "append" || keypath[1] == "prepend") {
			return true
		}
		return false
	}
}

// PackageResolver resolves a package handle to a filesystem root, used when
// transforming a path leaf whose source is Package: "the result is emitted
// as a mapping {package: <handle>, path: <rel-to-package>} instead"
// (spec.md §4.1). Supplied by the caller of Load (org-loader collaborator).
type PackageResolver interface {
	ResolvePackage(handle string) (string, bool)
}

var activeResolver PackageResolver

// SetPackageResolver installs the collaborator used to resolve Package
// sources during path transforms.
func SetPackageResolver(r PackageResolver) { activeResolver = r }

// transformPath canonicalizes a leaf string value per spec.md §4.1 if
// keypath is on the allow-list; otherwise it returns incoming unchanged.
func transformPath(incoming *Value, keypath []string) *Value {
	if incoming == nil || incoming.Kind != KindScalar || !matchesTransformPath(keypath) {
		return incoming
	}
	s, ok := incoming.Scalar.(string)
	if !ok {
		return incoming
	}

	if incoming.Source.Kind == SourcePackage && activeResolver != nil {
		root, found := activeResolver.ResolvePackage(incoming.Source.Package)
		if found {
			rel := s
			if filepath.IsAbs(s) {
				if r, err := filepath.Rel(root, s); err == nil {
					rel = r
				}
			}
			out := NewMapping(incoming.Source, incoming.Scope)
			out.Mapping.Set("package", NewScalar(incoming.Source.Package, incoming.Source, incoming.Scope))
			out.Mapping.Set("path", NewScalar(rel, incoming.Source, incoming.Scope))
			return out
		}
	}

	abs := expandAndResolve(s, incoming.Source)
	return NewScalar(abs, incoming.Source, incoming.Scope)
}

func expandAndResolve(s string, src Source) string {
	expanded := expandTilde(s)
	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded)
	}
	base := "."
	if src.Kind == SourceFile && src.Path != "" {
		base = filepath.Dir(src.Path)
	}
	return filepath.Clean(filepath.Join(base, expanded))
}

func expandTilde(s string) string {
	if !strings.HasPrefix(s, "~/") && s != "~" {
		return s
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return s
	}
	if s == "~" {
		return home
	}
	return filepath.Join(home, strings.TrimPrefix(s, "~/"))
}
