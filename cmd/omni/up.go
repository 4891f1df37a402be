package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrkdir/omni/internal/config"
	"github.com/wrkdir/omni/internal/logging"
	"github.com/wrkdir/omni/internal/provision"
	"github.com/wrkdir/omni/internal/workdir"
)

func newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "install this workdir's declared tools and record the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(cmd.Context())
		},
	}
}

func runUp(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	cwd, err := osGetwd()
	if err != nil {
		return err
	}

	id, ok, err := workdir.Resolve(cwd, a.machineID)
	if err != nil {
		return err
	}
	if !ok {
		id, err = workdir.Init(cwd, a.machineID)
		if err != nil {
			return err
		}
		logging.Logf("up: initialized workdir identity %s", id.String())
	}

	lock, alreadyDone, err := workdir.WaitOrPreempt(id.String(), id.Root, "up")
	if err != nil {
		return err
	}
	if alreadyDone {
		logging.Logf("up: attached run already completed for %s", id.String())
		return nil
	}
	defer lock.Release()

	syncLog, err := workdir.CreateSyncLog(lock.LogPath())
	if err != nil {
		return err
	}
	defer syncLog.Close()

	start := time.Now()
	if err := syncLog.Init(workdir.InitRecord{PID: osGetpid(), StartedAt: start.Unix(), WorkdirID: id.String(), Operation: "up"}); err != nil {
		return err
	}

	tree, handler := a.engine.Load(id.Root, configFiles(id.Root))
	if err := handler.Err(); err != nil {
		logging.Warnf("up: config errors: %v", err)
	}

	specs := decodeToolSpecs(tree)

	provEngine, closeProv, err := newProvisionEngine()
	if err != nil {
		return err
	}
	defer closeProv()

	env := provision.UpEnvironment{ConfigModtimes: a.engine.ConfigModtimes(id.Root)}
	envHash := config.ModtimeHash(env.ConfigModtimes)

	for _, spec := range specs {
		syncLog.Progress(workdir.ProgressRecord{TS: time.Now().Unix(), Phase: "install", Message: spec.Tool})
		result, err := provEngine.Up(ctx, spec, envHash)
		if err != nil {
			if !spec.FailOnUpgrade {
				logging.Warnf("up: installing %s failed, continuing: %v", spec.Tool, err)
				continue
			}
			syncLog.Final(workdir.FinalRecord{Status: "error", Duration: time.Since(start).Milliseconds()})
			return fmt.Errorf("installing %s: %w", spec.Tool, err)
		}
		env.Versions = append(env.Versions, result.Record)
	}

	env.ConfigHash = envHash
	if err := writeEnvironmentRecord(id, env); err != nil {
		syncLog.Final(workdir.FinalRecord{Status: "error", Duration: time.Since(start).Milliseconds()})
		return fmt.Errorf("recording up environment: %w", err)
	}

	syncLog.Final(workdir.FinalRecord{Status: "ok", Duration: time.Since(start).Milliseconds()})
	logging.Logf("up: completed for %s (%d tools)", id.String(), len(specs))
	return nil
}

// environmentRecordPath is where a workdir's most recent up environment is
// recorded, read back by `hook env` to build the dynenv plan without
// re-running provisioning on every prompt (spec.md §2 data flow step 3).
func environmentRecordPath(id workdir.ID) string {
	return filepath.Join(workdir.DataDir(id), "environment.json")
}

func writeEnvironmentRecord(id workdir.ID, env provision.UpEnvironment) error {
	dir := workdir.DataDir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return os.WriteFile(environmentRecordPath(id), payload, 0o644)
}

func readEnvironmentRecord(id workdir.ID) (provision.UpEnvironment, bool) {
	data, err := os.ReadFile(environmentRecordPath(id))
	if err != nil {
		return provision.UpEnvironment{}, false
	}
	var env provision.UpEnvironment
	if err := json.Unmarshal(data, &env); err != nil {
		return provision.UpEnvironment{}, false
	}
	return env, true
}

// decodeToolSpecs reads the workdir's declared tool list from its merged
// config tree at the "up" key, a sequence of
// `{tool, backend?, version?, dirs?, upgrade?, url?}` mappings.
func decodeToolSpecs(tree *config.Value) []provision.ToolSpec {
	up, ok := tree.Dig("up")
	if !ok || up.Kind != config.KindSequence {
		return nil
	}
	var specs []provision.ToolSpec
	for _, entry := range up.Sequence {
		spec := provision.ToolSpec{}
		if tool, ok := entry.Dig("tool"); ok {
			spec.Tool, _ = tool.AsStringForced()
		}
		if spec.Tool == "" {
			continue
		}
		if backend, ok := entry.Dig("backend"); ok {
			b, _ := backend.AsStringForced()
			spec.Backend = provision.Backend(b)
		}
		spec.VersionSpec = "latest"
		if version, ok := entry.Dig("version"); ok {
			spec.VersionSpec, _ = version.AsStringForced()
		}
		if dirs, ok := entry.Dig("dirs"); ok && dirs.Kind == config.KindSequence {
			for _, d := range dirs.Sequence {
				if s, ok := d.AsStringForced(); ok {
					spec.Dirs = append(spec.Dirs, s)
				}
			}
		}
		if url, ok := entry.Dig("url"); ok {
			spec.URL, _ = url.AsStringForced()
		}
		if upgrade, ok := entry.Dig("upgrade"); ok {
			spec.Upgrade, _ = upgrade.AsBoolForced()
		}
		specs = append(specs, spec)
	}
	return specs
}

// configFiles lists the YAML documents C1 merges for root, in ascending
// scope order, per spec.md §4.1.
func configFiles(root string) []struct {
	Path  string
	Scope config.Scope
} {
	return []struct {
		Path  string
		Scope config.Scope
	}{
		{Path: "/etc/omni/config.yaml", Scope: config.ScopeSystem},
		{Path: userConfigPath(), Scope: config.ScopeUser},
		{Path: root + "/.omni/config.yaml", Scope: config.ScopeWorkdir},
	}
}
