package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wrkdir/omni/internal/dynenv"
	"github.com/wrkdir/omni/internal/logging"
	"github.com/wrkdir/omni/internal/workdir"
)

const dynenvVar = "__omni_dynenv"

func newHookCmd() *cobra.Command {
	hook := &cobra.Command{
		Use:   "hook",
		Short: "shell-hook entry points",
	}
	hook.AddCommand(newHookEnvCmd())
	return hook
}

func newHookEnvCmd() *cobra.Command {
	var dialect string
	cmd := &cobra.Command{
		Use:   "env",
		Short: "compute the shell commands converging the environment to the current workdir",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := runHookEnv(cmd.Context(), parseDialect(dialect))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&dialect, "shell", "posix", "shell dialect: posix or fish")
	return cmd
}

func parseDialect(s string) dynenv.Dialect {
	if strings.EqualFold(s, "fish") {
		return dynenv.DialectFish
	}
	return dynenv.DialectPOSIX
}

// runHookEnv implements spec.md §2's per-prompt data flow: locate the
// workdir, consult its recorded up environment, diff against the
// currently-applied dynenv, and emit the convergence commands.
func runHookEnv(ctx context.Context, dialect dynenv.Dialect) (string, error) {
	a, err := newApp()
	if err != nil {
		return "", err
	}

	cwd, err := osGetwd()
	if err != nil {
		return "", err
	}

	before := environSnapshot()
	activeState, err := dynenv.Decode(before[dynenvVar])
	if err != nil {
		logging.Warnf("hook env: discarding unreadable dynenv state: %v", err)
		activeState, _ = dynenv.Decode(dynenv.NoDynenv)
	}

	id, ok, err := workdir.Resolve(cwd, a.machineID)
	if !ok || err != nil {
		if activeState.ID == dynenv.NoDynenv {
			return "", nil
		}
		after := dynenv.Undo(before, activeState)
		delete(after, dynenvVar)
		return dynenv.Emit(before, after, dialect), nil
	}

	env, ok := readEnvironmentRecord(id)
	if !ok {
		if activeState.ID == dynenv.NoDynenv {
			return "", nil
		}
		after := dynenv.Undo(before, activeState)
		delete(after, dynenvVar)
		return dynenv.Emit(before, after, dialect), nil
	}

	plan := dynenv.BuildPlan(env, before, before["GOPATH"], before["HOME"], false, "")
	targetID := dynenv.TargetID(planSignature(plan), strconv.Itoa(os.Getppid()), id.Root, id.String())

	if activeState.ID == targetID {
		return "", nil
	}

	baseline := before
	if activeState.ID != dynenv.NoDynenv {
		baseline = dynenv.Undo(before, activeState)
	}

	after, newState := dynenv.Apply(baseline, plan, targetID)
	encoded, err := dynenv.Encode(newState)
	if err != nil {
		return "", fmt.Errorf("encoding dynenv state: %w", err)
	}
	after[dynenvVar] = encoded

	return dynenv.Emit(before, after, dialect), nil
}

func environSnapshot() map[string]string {
	out := map[string]string{}
	for _, kv := range os.Environ() {
		if name, value, ok := strings.Cut(kv, "="); ok {
			out[name] = value
		}
	}
	return out
}

func planSignature(plan []dynenv.PlanOp) string {
	var b strings.Builder
	for _, op := range plan {
		fmt.Fprintf(&b, "%s=%d:%s\n", op.Name, op.Op, op.Value)
	}
	return b.String()
}
