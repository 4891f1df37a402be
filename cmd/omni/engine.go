package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/go-github/v66/github"

	"github.com/wrkdir/omni/internal/provision"
	"github.com/wrkdir/omni/internal/provision/cache"
	"github.com/wrkdir/omni/internal/xdg"
)

func run(dir string, env []string, name string, args ...string) error {
	if err := xdg.EnsureDir(dir); err != nil {
		return err
	}
	cmd := exec.CommandContext(context.Background(), name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func cargoInstallExec(dir, crate, version string) error {
	return run(dir, nil, "cargo", "install", "--root", dir, "--version", version, crate)
}

func goInstallExec(dir, module, version string) error {
	return run(dir, []string{"GOBIN=" + filepath.Join(dir, "bin")}, "go", "install", module+"@"+version)
}

// newProvisionEngine wires C3's backends against the on-disk caches, per
// SPEC_FULL.md §11's dependency table.
func newProvisionEngine() (*provision.Engine, func() error, error) {
	graphPath := filepath.Join(xdg.StateHome(), "provision.db")
	if err := xdg.EnsureDir(filepath.Dir(graphPath)); err != nil {
		return nil, nil, fmt.Errorf("preparing provisioning cache directory: %w", err)
	}
	graph, err := cache.Open(graphPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening provisioning cache: %w", err)
	}

	ttl := cache.New(filepath.Join(xdg.CacheHome(), "provision"))

	e := &provision.Engine{
		Mise:      provision.NewMiseBackend(),
		GH:        &provision.GHReleaseBackend{Lister: provision.NewGitHubReleaseLister(github.NewClient(nil))},
		Cargo:     &provision.CargoInstallBackend{Exec: cargoInstallExec},
		GoInstall: &provision.GoInstallBackend{Exec: goInstallExec},
		TTL:       ttl,
		Graph:     graph,
	}
	return e, graph.Close, nil
}
