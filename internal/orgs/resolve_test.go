package orgs

import (
	"path/filepath"
	"testing"
)

func TestResolvePathOwnerOnlyOrg(t *testing.T) {
	orgs, err := ParseOMNIOrg("https://github.com/xaf")
	if err != nil {
		t.Fatalf("ParseOMNIOrg: %v", err)
	}
	root := func(org Org) string { return "/repos" }

	got, ok := ResolvePath(orgs, "omni", root)
	if !ok {
		t.Fatalf("expected ResolvePath to match")
	}
	want := filepath.Join("/repos", "xaf", "omni")
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestResolvePathWithWorktreeSuffix(t *testing.T) {
	orgs, err := ParseOMNIOrg("https://github.com/xaf=main")
	if err != nil {
		t.Fatalf("ParseOMNIOrg: %v", err)
	}
	root := func(org Org) string { return "/repos" }

	got, ok := ResolvePath(orgs, "omni", root)
	if !ok {
		t.Fatalf("expected ResolvePath to match")
	}
	want := filepath.Join("/repos", "xaf", "omni", "main")
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestResolvePathFallsThroughToNextOrg(t *testing.T) {
	orgs, err := ParseOMNIOrg("https://github.com/xaf/blah,https://github.com/xaf")
	if err != nil {
		t.Fatalf("ParseOMNIOrg: %v", err)
	}
	root := func(org Org) string { return "/repos" }

	got, ok := ResolvePath(orgs, "omni", root)
	if !ok {
		t.Fatalf("expected second org to match after first org's pinned repo rejects the handle")
	}
	want := filepath.Join("/repos", "xaf", "omni")
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestResolvePathNoMatch(t *testing.T) {
	orgs, err := ParseOMNIOrg("https://github.com/xaf/blah")
	if err != nil {
		t.Fatalf("ParseOMNIOrg: %v", err)
	}
	if _, ok := ResolvePath(orgs, "omni", func(Org) string { return "/repos" }); ok {
		t.Fatalf("expected no match")
	}
}

func TestResolvePathAzureOwnerOnly(t *testing.T) {
	orgs, err := ParseOMNIOrg("https://dev.azure.com/Org/Project")
	if err != nil {
		t.Fatalf("ParseOMNIOrg: %v", err)
	}
	got, ok := ResolvePath(orgs, "Repo", func(Org) string { return "/repos" })
	if !ok {
		t.Fatalf("expected azure org to match")
	}
	want := filepath.Join("/repos", "Org/Project", "Repo")
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
