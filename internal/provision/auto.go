package provision

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// AutoDetection is one detected version together with every directory
// (relative to root) in which it was found, per spec.md §4.3 "Auto version".
type AutoDetection struct {
	Version string
	RelDirs []string
}

var toolVersionsPattern = regexp.MustCompile(`^[0-9][0-9.]*`)

var toolAliases = map[string][]string{
	"go":   {"go", "golang"},
	"node": {"node", "nodejs"},
}

// DetectAuto walks root (and dirs, if non-empty, instead of root) looking
// for `.tool-versions` and `.<tool>-version` files, skipping `vendor/`
// path components, and groups results into one install per distinct
// version with the union of contributing directories.
func DetectAuto(tool string, root string, dirs []string) ([]AutoDetection, error) {
	roots := dirs
	if len(roots) == 0 {
		roots = []string{root}
	}

	byVersion := map[string]map[string]struct{}{}
	for _, r := range roots {
		if err := walkForVersions(tool, root, r, byVersion); err != nil {
			return nil, err
		}
	}

	var out []AutoDetection
	for version, relDirs := range byVersion {
		det := AutoDetection{Version: version}
		for relDir := range relDirs {
			det.RelDirs = append(det.RelDirs, relDir)
		}
		out = append(out, det)
	}
	return out, nil
}

func walkForVersions(tool, root, start string, byVersion map[string]map[string]struct{}) error {
	aliases := append([]string{tool}, toolAliases[tool]...)

	return filepath.WalkDir(start, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "vendor" {
				return filepath.SkipDir
			}
			return nil
		}

		base := filepath.Base(path)
		relDir, rerr := filepath.Rel(root, filepath.Dir(path))
		if rerr != nil {
			relDir = filepath.Dir(path)
		}

		if base == ".tool-versions" {
			version, ok := parseToolVersionsFile(path, aliases)
			if ok {
				addDetection(byVersion, version, relDir)
			}
			return nil
		}

		for _, alias := range aliases {
			if base == "."+alias+"-version" {
				version, ok := parseSingleVersionFile(path)
				if ok {
					addDetection(byVersion, version, relDir)
				}
			}
		}
		return nil
	})
}

func addDetection(byVersion map[string]map[string]struct{}, version, relDir string) {
	if byVersion[version] == nil {
		byVersion[version] = map[string]struct{}{}
	}
	byVersion[version][relDir] = struct{}{}
}

func parseToolVersionsFile(path string, aliases []string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	aliasSet := map[string]bool{}
	for _, a := range aliases {
		aliasSet[a] = true
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if !aliasSet[fields[0]] {
			continue
		}
		if toolVersionsPattern.MatchString(fields[1]) {
			return fields[1], true
		}
	}
	return "", false
}

func parseSingleVersionFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(string(data))
	if v == "" {
		return "", false
	}
	return v, true
}
