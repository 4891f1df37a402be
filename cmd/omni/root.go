package main

import (
	"github.com/spf13/cobra"

	"github.com/wrkdir/omni/internal/config"
	"github.com/wrkdir/omni/internal/workdir"
)

// app bundles the long-lived, per-invocation state every subcommand needs:
// the config merge engine (cached across an invocation's multiple Load
// calls) and the resolved machine id for workdir identity.
type app struct {
	engine    *config.Engine
	machineID string
}

func newApp() (*app, error) {
	machineID, err := workdir.MachineID()
	if err != nil {
		return nil, err
	}
	return &app{engine: config.NewEngine(), machineID: machineID}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "omni",
		Short:         "developer workstation orchestrator",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newUpCmd())
	root.AddCommand(newDownCmd())
	root.AddCommand(newHookCmd())
	root.AddCommand(newTidyCmd())

	return root
}
