package config

import (
	"path/filepath"
	"testing"
)

// Invariant 2: path-transform idempotence on a leaf under an allow-listed
// keypath: a second transform pass doesn't change an already-absolute path.
func TestPathTransformIdempotent(t *testing.T) {
	src := Source{Kind: SourceFile, Path: "/home/u/project/config.yaml"}
	leaf := NewScalar("~/relative/dir", src, ScopeUser)

	once := transformPath(leaf, []string{"worktree"})
	twice := transformPath(once, []string{"worktree"})

	onceStr, _ := once.AsStringForced()
	twiceStr, _ := twice.AsStringForced()
	if !filepath.IsAbs(onceStr) {
		t.Fatalf("expected absolute path after transform, got %q", onceStr)
	}
	if onceStr != twiceStr {
		t.Fatalf("transform not idempotent: %q vs %q", onceStr, twiceStr)
	}
}

func TestPathTransformRelativeResolvesAgainstSourceDir(t *testing.T) {
	src := Source{Kind: SourceFile, Path: "/a/b/config.yaml"}
	leaf := NewScalar("rel/dir", src, ScopeWorkdir)
	out := transformPath(leaf, []string{"cache", "path"})
	s, _ := out.AsStringForced()
	want := filepath.Clean("/a/b/rel/dir")
	if s != want {
		t.Fatalf("got %q want %q", s, want)
	}
}

func TestPathTransformIgnoresNonAllowlisted(t *testing.T) {
	src := Source{Kind: SourceFile, Path: "/a/b/config.yaml"}
	leaf := NewScalar("rel/dir", src, ScopeWorkdir)
	out := transformPath(leaf, []string{"not", "on", "allowlist"})
	s, _ := out.AsStringForced()
	if s != "rel/dir" {
		t.Fatalf("expected untouched value, got %q", s)
	}
}

func TestMatchesTransformPathAllowlist(t *testing.T) {
	cases := map[string]bool{
		"worktree":                   true,
		"cache.path":                 true,
		"suggest_clone.template_file":  true,
		"suggest_config.template_file": true,
		"org.myorg.worktree":         true,
		"path.append.dirs":           true,
		"path.prepend.dirs":          true,
		"other.key":                  false,
	}
	for dotted, want := range cases {
		parts := splitDotted(dotted)
		if got := matchesTransformPath(parts); got != want {
			t.Fatalf("%s: got %v want %v", dotted, got, want)
		}
	}
}

func splitDotted(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}
