package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wrkdir/omni/internal/logging"
	"github.com/wrkdir/omni/internal/workdir"
)

func newDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "release this workdir's provisioning requirement, leaving installs for tidy to collect",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDown()
		},
	}
}

// runDown drops this workdir's required_by edge against its last recorded
// environment hash, so a later `tidy` can garbage-collect tool versions no
// workdir still needs (spec.md §4.3 "Cleanup"), and forgets the recorded
// environment so the next `hook env` undoes any applied dynenv.
func runDown() error {
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
		return fmt.Errorf("down: no workdir identity found at %s", cwd)
	}

	env, ok := readEnvironmentRecord(id)
	if !ok {
		logging.Logf("down: %s has no recorded up environment, nothing to release", id.String())
		return nil
	}

	if env.ConfigHash != "" {
		provEngine, closeProv, err := newProvisionEngine()
		if err != nil {
			return err
		}
		defer closeProv()
		if err := provEngine.Graph.ReleaseEnv(env.ConfigHash); err != nil {
			return fmt.Errorf("releasing environment requirement: %w", err)
		}
	}

	if err := os.Remove(environmentRecordPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing recorded environment: %w", err)
	}

	logging.Logf("down: released %s, run `omni tidy` to reclaim unused installs", id.String())
	return nil
}
