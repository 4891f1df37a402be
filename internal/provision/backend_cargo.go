package provision

import (
	"fmt"
	"path/filepath"

	"github.com/wrkdir/omni/internal/xdg"
)

// CargoInstallBackend installs a crate via `cargo install`, per spec.md
// §4.3's backend table: install location `<state>/cargo/<crate>/<ver>`,
// PATH contribution `…/bin`.
type CargoInstallBackend struct {
	Exec func(dir, crate, version string) error
}

func (b *CargoInstallBackend) InstallDir(crate, version string) string {
	return filepath.Join(xdg.StateRoot("cargo"), crate, version)
}

func (b *CargoInstallBackend) BinDir(crate, version string) string {
	return filepath.Join(b.InstallDir(crate, version), "bin")
}

// Install runs the configured executor against the crate's install dir.
func (b *CargoInstallBackend) Install(crate, version string) error {
	dir := b.InstallDir(crate, version)
	if b.Exec == nil {
		return fmt.Errorf("cargo-install backend: no executor configured")
	}
	return b.Exec(dir, crate, version)
}
