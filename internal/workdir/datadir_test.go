package workdir

import (
	"strings"
	"testing"
)

func TestDataDirDeterministic(t *testing.T) {
	id := ID{Petname: "calm-amber-otter", Hex: "0123456789abcdef"}
	a := DataDir(id)
	b := DataDir(id)
	if a != b {
		t.Fatalf("expected deterministic data dir, got %q vs %q", a, b)
	}
	if !strings.Contains(a, "/wd/") {
		t.Fatalf("expected data dir under wd/, got %q", a)
	}
}

func TestDataDirDiffersPerID(t *testing.T) {
	a := DataDir(ID{Petname: "calm-amber-otter", Hex: "0123456789abcdef"})
	b := DataDir(ID{Petname: "brave-blue-badger", Hex: "fedcba9876543210"})
	if a == b {
		t.Fatalf("expected distinct ids to produce distinct data dirs")
	}
}

func TestBase62NonEmpty(t *testing.T) {
	enc := base62([]byte{0xde, 0xad, 0xbe, 0xef})
	if enc == "" {
		t.Fatalf("expected non-empty encoding")
	}
}

func TestBase62ZeroBytes(t *testing.T) {
	if got := base62([]byte{0, 0, 0}); got != "0" {
		t.Fatalf("got %q want \"0\"", got)
	}
}
