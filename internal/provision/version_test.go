package provision

import "testing"

// S5 — version resolution against a mock release index (the ResolveVersion
// half; asset matching is covered in backend_ghrelease_test.go).
func TestResolveVersionS5(t *testing.T) {
	candidates := []string{
		"v1.2.3", "v1.2.2", "prefix-1.2.0", "nonstandard",
		"noassets", "nomatchingassets", "twoassets", "v1.1.9",
	}

	if got, ok := ResolveVersion("1.1", candidates); !ok || got != "v1.1.9" {
		t.Fatalf("spec 1.1: got %q ok=%v", got, ok)
	}
	if got, ok := ResolveVersion("latest", candidates); !ok || got != "v1.2.3" {
		t.Fatalf("latest (no prerelease): got %q ok=%v", got, ok)
	}
	if got, ok := LatestWithPrerelease(append(candidates, "v2.0.0-alpha"), true); !ok || got != "v2.0.0-alpha" {
		t.Fatalf("latest (prerelease): got %q ok=%v", got, ok)
	}
	if got, ok := ResolveVersion("nomatchingassets", candidates); !ok || got != "nomatchingassets" {
		t.Fatalf("exact-tag spec should still resolve by name: got %q ok=%v", got, ok)
	}
	if got, ok := ResolveVersion("twoassets", candidates); !ok || got != "twoassets" {
		t.Fatalf("spec twoassets: got %q ok=%v", got, ok)
	}
}

func TestResolveVersionExactPrefix(t *testing.T) {
	candidates := []string{"1.2.0", "1.2.5", "1.3.0"}
	if got, ok := ResolveVersion("1.2", candidates); !ok || got != "1.2.5" {
		t.Fatalf("got %q ok=%v", got, ok)
	}
}

func TestResolveVersionNoMatch(t *testing.T) {
	if _, ok := ResolveVersion("9.9.9", []string{"1.0.0"}); ok {
		t.Fatalf("expected no match")
	}
}
