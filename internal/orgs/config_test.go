package orgs

import "testing"

func TestParseOMNIOrgEmpty(t *testing.T) {
	orgs, err := ParseOMNIOrg("")
	if err != nil {
		t.Fatalf("ParseOMNIOrg: %v", err)
	}
	if orgs != nil {
		t.Fatalf("expected nil, got %v", orgs)
	}
}

func TestParseOMNIOrgCommaSeparatedList(t *testing.T) {
	orgs, err := ParseOMNIOrg("github.com:xaf, github.com:other=dev")
	if err != nil {
		t.Fatalf("ParseOMNIOrg: %v", err)
	}
	if len(orgs) != 2 {
		t.Fatalf("got %d orgs, want 2", len(orgs))
	}
	if orgs[0].Worktree != nil {
		t.Fatalf("expected first org to have no worktree")
	}
	if orgs[1].Worktree == nil || *orgs[1].Worktree != "dev" {
		t.Fatalf("expected second org worktree \"dev\", got %v", orgs[1].Worktree)
	}
}

func TestParseOMNIOrgInvalidHandle(t *testing.T) {
	if _, err := ParseOMNIOrg("not-a-valid-handle"); err == nil {
		t.Fatalf("expected error for handle with no host separator")
	}
}
