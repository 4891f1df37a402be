package provision

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/wrkdir/omni/internal/logging"
	"github.com/wrkdir/omni/internal/xdg"
)

// MiseBackend drives the single external tool-runtime binary ("mise")
// installed under the managed shims/tool-runtime directory, per spec.md
// §4.3 "Tool-runtime shim".
type MiseBackend struct {
	BinPath string
	Runner  func(ctx context.Context, args ...string) ([]byte, error)
}

// NewMiseBackend wires a MiseBackend against the managed binary path,
// defaulting Runner to a real exec.Command invocation.
func NewMiseBackend() *MiseBackend {
	bin := filepath.Join(xdg.MiseRoot(), "bin", "mise")
	return &MiseBackend{
		BinPath: bin,
		Runner: func(ctx context.Context, args ...string) ([]byte, error) {
			cmd := exec.CommandContext(ctx, bin, args...)
			return cmd.CombinedOutput()
		},
	}
}

// EnsurePresent returns nil when the tool-runtime binary already exists.
// Otherwise it resolves the latest jdx/mise release through the ghrelease
// backend and logs how many assets were selected; it does not download or
// install them, so the binary is still absent afterwards.
func (m *MiseBackend) EnsurePresent(ctx context.Context, gh *GHReleaseBackend) error {
	if _, err := os.Stat(m.BinPath); err == nil {
		return nil
	}
	if gh == nil {
		return fmt.Errorf("mise binary missing at %s and no ghrelease backend configured to install it", m.BinPath)
	}
	_, assets, err := gh.Resolve(ctx, GHReleaseRequest{
		Owner: "jdx", Repo: "mise", Spec: "latest",
	})
	if err != nil {
		return fmt.Errorf("installing tool-runtime: %w", err)
	}
	logging.Logf("tool-runtime: selected %d asset(s) for install", len(assets))
	return nil
}

// CheckUpgrade runs the runtime's self-check and reports whether an
// update is available.
func (m *MiseBackend) CheckUpgrade(ctx context.Context) (bool, error) {
	out, err := m.Runner(ctx, "self-update", "--dry-run")
	if err != nil {
		return false, fmt.Errorf("tool-runtime self-check: %w", err)
	}
	return len(out) > 0, nil
}

// MigrateLegacyLayout performs the one-time migration of a prior
// manager's install layout: it renames the install root and, when
// installs/go exists and installs/golang does not, links golang to go.
// It does not re-create shims.
func (m *MiseBackend) MigrateLegacyLayout(legacyRoot, newRoot string) error {
	if _, err := os.Stat(legacyRoot); os.IsNotExist(err) {
		return nil
	}
	if err := os.Rename(legacyRoot, newRoot); err != nil {
		return fmt.Errorf("migrating tool-runtime layout: %w", err)
	}
	goDir := filepath.Join(newRoot, "installs", "go")
	golangDir := filepath.Join(newRoot, "installs", "golang")
	if _, err := os.Stat(goDir); err == nil {
		if _, err := os.Lstat(golangDir); os.IsNotExist(err) {
			if err := os.Symlink(goDir, golangDir); err != nil {
				return fmt.Errorf("relinking go/golang: %w", err)
			}
		}
	}
	return nil
}

// Install installs a tool version via the tool-runtime, returning its
// prefix directory.
func (m *MiseBackend) Install(ctx context.Context, tool, version string) (string, error) {
	if _, err := m.Runner(ctx, "install", fmt.Sprintf("%s@%s", tool, version)); err != nil {
		return "", fmt.Errorf("installing %s@%s: %w", tool, version, err)
	}
	out, err := m.Runner(ctx, "where", fmt.Sprintf("%s@%s", tool, version))
	if err != nil {
		return "", fmt.Errorf("locating %s@%s: %w", tool, version, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// ListVersions returns the remote version list for a tool, as reported by
// the tool-runtime (used when resolving "auto"/"latest" for default-
// backend tools).
func (m *MiseBackend) ListVersions(ctx context.Context, tool string) ([]string, error) {
	out, err := m.Runner(ctx, "ls-remote", tool)
	if err != nil {
		return nil, fmt.Errorf("listing versions for %s: %w", tool, err)
	}
	return splitLines(string(out)), nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if line := s[start:i]; line != "" {
				lines = append(lines, line)
			}
			start = i + 1
		}
	}
	if start < len(s) && s[start:] != "" {
		lines = append(lines, s[start:])
	}
	return lines
}
