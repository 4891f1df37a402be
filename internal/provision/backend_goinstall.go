package provision

import (
	"fmt"
	"path/filepath"

	"golang.org/x/mod/semver"

	"github.com/wrkdir/omni/internal/xdg"
)

// GoInstallBackend installs a Go module's binary via `go install`, per
// spec.md §4.3: install location `<state>/go/<module>/<ver>`, PATH
// contribution `…/bin`. Go's own canonical semver rules (golang.org/x/mod/
// semver), not general-purpose ranges, govern its version listing.
type GoInstallBackend struct {
	Exec func(dir, module, version string) error
}

func (b *GoInstallBackend) InstallDir(module, version string) string {
	return filepath.Join(xdg.StateRoot("go"), module, version)
}

func (b *GoInstallBackend) BinDir(module, version string) string {
	return filepath.Join(b.InstallDir(module, version), "bin")
}

func (b *GoInstallBackend) Install(module, version string) error {
	dir := b.InstallDir(module, version)
	if b.Exec == nil {
		return fmt.Errorf("go-install backend: no executor configured")
	}
	return b.Exec(dir, module, version)
}

// ResolveModuleVersion picks the latest canonical version from a module
// proxy's `@v/list` output that satisfies spec (exact tag, or "latest").
func ResolveModuleVersion(spec string, available []string) (string, bool) {
	var best string
	for _, v := range available {
		if !semver.IsValid(v) {
			continue
		}
		if spec != "latest" && v != spec {
			continue
		}
		if best == "" || semver.Compare(v, best) > 0 {
			best = v
		}
	}
	return best, best != ""
}
