package syntax

import "strings"

// Sanitize implements spec.md §4.2's dest naming rule: replace runs of
// non-alphanumerics with "_" and trim leading/trailing "_". Invariant 3
// (§8) requires Sanitize to be idempotent and to only ever emit
// [A-Za-z0-9_].
func Sanitize(s string) string {
	var b strings.Builder
	inRun := false
	for _, r := range s {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if isAlnum {
			b.WriteRune(r)
			inRun = false
			continue
		}
		if !inRun {
			b.WriteRune('_')
			inRun = true
		}
	}
	return strings.Trim(b.String(), "_")
}
