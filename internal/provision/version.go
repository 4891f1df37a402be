package provision

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// MatchKind classifies how a candidate version satisfied a spec, used to
// rank candidates by the precedence of spec.md §4.3 step 3.
type MatchKind int

const (
	matchNone MatchKind = iota
	matchSemverRange
	matchExactPrefix
	matchExact
)

// ResolveVersion implements spec.md §4.3's matcher: "exact equality >
// exact prefix (1 matches 1.x.y, 1.2 matches 1.2.x) > semver range;
// non-parsable tags compared lexicographically only for exact match."
// candidates is the full remote version list (already de-duplicated,
// newest-ordered is not assumed). Returns the chosen tag, or false if
// nothing matches.
func ResolveVersion(spec string, candidates []string) (string, bool) {
	if spec == "latest" {
		return latest(candidates, false)
	}

	best := ""
	bestKind := matchNone
	var bestSemver *semver.Version

	constraint, constraintErr := semver.NewConstraint(spec)

	for _, c := range candidates {
		if c == spec {
			return c, true // exact equality wins immediately
		}
		if isExactPrefixMatch(spec, c) {
			if bestKind < matchExactPrefix {
				best, bestKind = c, matchExactPrefix
				bestSemver = parseSemverLoose(c)
			} else if bestKind == matchExactPrefix {
				if cv := parseSemverLoose(c); cv != nil && (bestSemver == nil || cv.GreaterThan(bestSemver)) {
					best, bestSemver = c, cv
				}
			}
			continue
		}
		if constraintErr == nil && bestKind < matchExactPrefix {
			if cv, err := semver.NewVersion(c); err == nil && constraint.Check(cv) {
				if bestKind < matchSemverRange || bestSemver == nil || cv.GreaterThan(bestSemver) {
					best, bestKind, bestSemver = c, matchSemverRange, cv
				}
			}
		}
	}
	return best, best != ""
}

// latest implements the "latest" spec with optional prerelease inclusion,
// per S5 of §8.
func latest(candidates []string, prerelease bool) (string, bool) {
	var versions []*semver.Version
	byRaw := map[*semver.Version]string{}
	for _, c := range candidates {
		v := parseSemverLoose(c)
		if v == nil {
			continue
		}
		if v.Prerelease() != "" && !prerelease {
			continue
		}
		versions = append(versions, v)
		byRaw[v] = c
	}
	if len(versions) == 0 {
		return "", false
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].LessThan(versions[j]) })
	top := versions[len(versions)-1]
	return byRaw[top], true
}

// LatestWithPrerelease exposes the prerelease=true branch of S5 directly,
// since ResolveVersion always excludes prereleases for "latest";
// GHReleaseBackend.Resolve passes its request's prerelease flag here.
func LatestWithPrerelease(candidates []string, prerelease bool) (string, bool) {
	return latest(candidates, prerelease)
}

func parseSemverLoose(tag string) *semver.Version {
	v, err := semver.NewVersion(strings.TrimPrefix(tag, "v"))
	if err != nil {
		return nil
	}
	return v
}

// isExactPrefixMatch implements "1 matches 1.x.y, 1.2 matches 1.2.x": spec
// is a dot-separated numeric prefix of candidate's own dotted numeric
// prefix.
func isExactPrefixMatch(spec, candidate string) bool {
	specParts := numericPrefixParts(spec)
	if len(specParts) == 0 {
		return false
	}
	candParts := numericPrefixParts(strings.TrimPrefix(candidate, "v"))
	if len(candParts) < len(specParts) {
		return false
	}
	for i, p := range specParts {
		if candParts[i] != p {
			return false
		}
	}
	return true
}

func numericPrefixParts(s string) []string {
	parts := strings.Split(s, ".")
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			return nil
		}
	}
	return parts
}
