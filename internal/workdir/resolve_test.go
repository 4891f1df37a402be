package workdir

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveFindsIDInAncestor(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	id, err := Init(root, "machine-x")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	got, ok, err := Resolve(sub, "machine-x")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ok {
		t.Fatalf("expected Resolve to find the ancestor id")
	}
	if got.Petname != id.Petname || got.Hex != id.Hex {
		t.Fatalf("got %+v want %+v", got, id)
	}
}

func TestResolveTreatsUnverifiableIDAsAbsentAndContinuesSearch(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	// id minted for a different machine: verify_id fails on "machine-x".
	if _, err := Init(root, "machine-other"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	_, ok, err := Resolve(sub, "machine-x")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ok {
		t.Fatalf("expected unverifiable id to be treated as absent")
	}
}

func TestOriginHostStripsSchemeAndUser(t *testing.T) {
	cases := map[string]string{
		"git@github.com:owner/repo.git":       "github.com",
		"ssh://git@github.com/owner/repo.git": "github.com",
		"https://github.com/owner/repo.git":   "github.com",
		"github.com/owner/repo":               "github.com",
	}
	for in, want := range cases {
		if got := originHost(in); got != want {
			t.Fatalf("originHost(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOriginRePattern(t *testing.T) {
	m := originRe.FindStringSubmatch("git@github.com:wrkdir/omni.git")
	if m == nil || m[1] != "wrkdir" || m[2] != "omni" {
		t.Fatalf("got %v", m)
	}
}
