package orgs

import "strings"

// ParseOMNIOrg parses the OMNI_ORG environment variable: a comma-separated
// list of `handle[=worktree]` entries, per SPEC_FULL.md §12.
func ParseOMNIOrg(value string) ([]Org, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	var orgs []Org
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		handle, worktree, hasWorktree := strings.Cut(entry, "=")
		org, err := ParseHandle(handle)
		if err != nil {
			return nil, err
		}
		if hasWorktree && worktree != "" {
			org.Worktree = &worktree
		}
		orgs = append(orgs, org)
	}
	return orgs, nil
}
