package syntax

import (
	"regexp"
	"testing"
)

var sanitizedRe = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// Invariant 3: sanitize output is restricted to [A-Za-z0-9_], has no
// leading/trailing underscore, and is idempotent.
func TestSanitizeInvariant(t *testing.T) {
	cases := []string{"--param-dest", "foo.bar/baz", "___lead", "trail___", "already_clean", "--a--b--"}
	for _, c := range cases {
		once := Sanitize(c)
		if !sanitizedRe.MatchString(once) {
			t.Fatalf("%q sanitized to %q which has disallowed characters", c, once)
		}
		if len(once) > 0 && (once[0] == '_' || once[len(once)-1] == '_') {
			t.Fatalf("%q sanitized to %q with leading/trailing underscore", c, once)
		}
		twice := Sanitize(once)
		if once != twice {
			t.Fatalf("sanitize not idempotent for %q: %q vs %q", c, once, twice)
		}
	}
}
