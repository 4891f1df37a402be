package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wrkdir/omni/internal/logging"
)

func newTidyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tidy",
		Short: "uninstall tool versions no workdir requires anymore",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTidy(cmd.Context())
		},
	}
}

// runTidy drives C3's Cleanup: installed(tool,version) rows with no
// incoming required_by edge are uninstalled and forgotten. Idempotent per
// Invariant 8.
func runTidy(ctx context.Context) error {
	provEngine, closeProv, err := newProvisionEngine()
	if err != nil {
		return err
	}
	defer closeProv()

	if err := provEngine.Cleanup(ctx); err != nil {
		return fmt.Errorf("tidy: %w", err)
	}
	logging.Logf("tidy: cleanup complete")
	return nil
}
