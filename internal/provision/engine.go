package provision

import (
	"context"
	"fmt"
	"os"

	"github.com/wrkdir/omni/internal/errs"
	"github.com/wrkdir/omni/internal/logging"
	"github.com/wrkdir/omni/internal/provision/cache"
	"github.com/wrkdir/omni/internal/settings"
)

// Engine orchestrates C3: version resolution, install dispatch across
// backends, required-by bookkeeping, and cleanup. Constructed once per
// invocation, per spec.md §9 "Global singletons" (no package-level
// engine state).
type Engine struct {
	Mise      *MiseBackend
	GH        *GHReleaseBackend
	Cargo     *CargoInstallBackend
	GoInstall *GoInstallBackend
	TTL       *cache.TTLCache
	Graph     *cache.Graph
}

// Up resolves and installs one ToolSpec, recording the required_by edge
// against envHash only after the install itself succeeds, per spec.md §5
// "Cancellation": the edge must not exist for a partial install.
func (e *Engine) Up(ctx context.Context, spec ToolSpec, envHash string) (UpResult, error) {
	switch spec.Backend {
	case BackendGHRelease:
		return e.upGHRelease(ctx, spec, envHash)
	case BackendCargo:
		return e.upCargo(spec, envHash)
	case BackendGoInstall:
		return e.upGoInstall(ctx, spec, envHash)
	default:
		return e.upMise(ctx, spec, envHash)
	}
}

func (e *Engine) upMise(ctx context.Context, spec ToolSpec, envHash string) (UpResult, error) {
	version := spec.VersionSpec
	if version == "auto" {
		detections, err := DetectAuto(spec.Tool, ".", spec.Dirs)
		if err != nil {
			return UpResult{}, fmt.Errorf("auto-detecting %s version: %w", spec.Tool, err)
		}
		if len(detections) == 0 {
			return UpResult{}, errs.New(errs.VersionNotFound, fmt.Sprintf("no auto-detected version for %s", spec.Tool))
		}
		version = detections[0].Version
	} else if version != "latest" {
		if remote, err := e.remoteVersions(ctx, spec.Tool); err == nil {
			if resolved, ok := ResolveVersion(version, remote); ok {
				version = resolved
			}
		}
	} else {
		remote, err := e.remoteVersions(ctx, spec.Tool)
		if err != nil {
			return UpResult{}, fmt.Errorf("resolving latest %s: %w", spec.Tool, err)
		}
		resolved, ok := ResolveVersion("latest", remote)
		if !ok {
			return UpResult{}, errs.New(errs.VersionNotFound, fmt.Sprintf("no latest version for %s", spec.Tool))
		}
		version = resolved
	}

	prefix, err := e.Mise.Install(ctx, spec.Tool, version)
	if err != nil {
		if spec.FailOnUpgrade {
			return UpResult{}, errs.New(errs.InstallFailed, err.Error())
		}
		return UpResult{}, errs.New(errs.InstallFailed, err.Error())
	}

	record := ToolVersionRecord{Backend: BackendMise, Tool: spec.Tool, NormalizedName: spec.Tool, Version: version, Dir: prefix}
	if err := e.recordSuccess(record, envHash); err != nil {
		return UpResult{}, err
	}
	return UpResult{Record: record}, nil
}

func (e *Engine) remoteVersions(ctx context.Context, tool string) ([]string, error) {
	var cached []string
	fresh, _ := e.TTL.Get("versions-"+tool, settings.PluginVersionsExpire(), &cached)
	if fresh {
		return cached, nil
	}
	remote, err := e.Mise.ListVersions(ctx, tool)
	if err != nil {
		if len(cached) > 0 {
			logging.Warnf("using stale version cache for %s: %v", tool, err)
			return cached, nil
		}
		return nil, err
	}
	_ = e.TTL.Set("versions-"+tool, remote)
	return remote, nil
}

func (e *Engine) upGHRelease(ctx context.Context, spec ToolSpec, envHash string) (UpResult, error) {
	owner, repo, err := splitOwnerRepo(spec.URL)
	if err != nil {
		return UpResult{}, err
	}
	_, assets, err := e.GH.Resolve(ctx, GHReleaseRequest{Owner: owner, Repo: repo, Spec: spec.VersionSpec})
	if err != nil {
		if !spec.FailOnUpgrade {
			logging.Warnf("ghrelease install failed for %s, continuing: %v", spec.Tool, err)
		}
		return UpResult{}, err
	}
	record := ToolVersionRecord{Backend: BackendGHRelease, Tool: spec.Tool, Version: spec.VersionSpec, Dir: fmt.Sprintf("%d assets", len(assets))}
	if err := e.recordSuccess(record, envHash); err != nil {
		return UpResult{}, err
	}
	return UpResult{Record: record}, nil
}

func (e *Engine) upCargo(spec ToolSpec, envHash string) (UpResult, error) {
	if err := e.Cargo.Install(spec.Tool, spec.VersionSpec); err != nil {
		return UpResult{}, errs.New(errs.InstallFailed, err.Error())
	}
	record := ToolVersionRecord{Backend: BackendCargo, Tool: spec.Tool, Version: spec.VersionSpec, Dir: e.Cargo.InstallDir(spec.Tool, spec.VersionSpec), BinPath: e.Cargo.BinDir(spec.Tool, spec.VersionSpec)}
	if err := e.recordSuccess(record, envHash); err != nil {
		return UpResult{}, err
	}
	return UpResult{Record: record}, nil
}

func (e *Engine) upGoInstall(ctx context.Context, spec ToolSpec, envHash string) (UpResult, error) {
	if err := e.GoInstall.Install(spec.Tool, spec.VersionSpec); err != nil {
		return UpResult{}, errs.New(errs.InstallFailed, err.Error())
	}
	record := ToolVersionRecord{Backend: BackendGoInstall, Tool: spec.Tool, Version: spec.VersionSpec, Dir: e.GoInstall.InstallDir(spec.Tool, spec.VersionSpec), BinPath: e.GoInstall.BinDir(spec.Tool, spec.VersionSpec)}
	if err := e.recordSuccess(record, envHash); err != nil {
		return UpResult{}, err
	}
	return UpResult{Record: record}, nil
}

func (e *Engine) recordSuccess(record ToolVersionRecord, envHash string) error {
	if e.Graph == nil {
		return nil
	}
	if err := e.Graph.RecordInstalled(record.Tool, record.Version, string(record.Backend)); err != nil {
		return fmt.Errorf("recording install: %w", err)
	}
	if err := e.Graph.RecordRequiredBy(record.Tool, record.Version, string(record.Backend), envHash); err != nil {
		return fmt.Errorf("recording required_by: %w", err)
	}
	return nil
}

// Cleanup removes installed rows with no incoming required_by edge. It is
// a fixed point: running it twice in a row removes nothing the second
// time, per Invariant 8.
func (e *Engine) Cleanup(ctx context.Context) error {
	rows, err := e.Graph.Unreferenced()
	if err != nil {
		return fmt.Errorf("listing unreferenced tools: %w", err)
	}
	for _, row := range rows {
		if err := e.uninstall(ctx, row); err != nil {
			return fmt.Errorf("uninstalling %s@%s: %w", row.Tool, row.Version, err)
		}
		if err := e.Graph.Forget(row.Tool, row.Version, row.Backend); err != nil {
			return fmt.Errorf("forgetting %s@%s: %w", row.Tool, row.Version, err)
		}
	}
	return nil
}

func (e *Engine) uninstall(ctx context.Context, row cache.InstalledRow) error {
	switch Backend(row.Backend) {
	case BackendGHRelease:
		return os.RemoveAll(fmt.Sprintf("%s/gh/%s/%s", row.Tool, row.Tool, row.Version))
	case BackendCargo:
		return os.RemoveAll(e.Cargo.InstallDir(row.Tool, row.Version))
	case BackendGoInstall:
		return os.RemoveAll(e.GoInstall.InstallDir(row.Tool, row.Version))
	default:
		_, err := e.Mise.Runner(ctx, "uninstall", fmt.Sprintf("%s@%s", row.Tool, row.Version))
		return err
	}
}

func splitOwnerRepo(url string) (owner, repo string, err error) {
	parts := splitOnce(url, "/")
	if parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid owner/repo %q", url)
	}
	return parts[0], parts[1], nil
}

func splitOnce(s, sep string) [2]string {
	for i := 0; i+len(sep) <= len(s); i++ {
		if s[i:i+len(sep)] == sep {
			return [2]string{s[:i], s[i+len(sep):]}
		}
	}
	return [2]string{s, ""}
}
