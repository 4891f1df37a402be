package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"rsc.io/script"
	"rsc.io/script/scripttest"
)

// TestScripts drives the omni binary end-to-end through `omni up` and
// `omni hook env` using the teacher's own script-testing dependency,
// against the .txt scripts under testdata/script.
func TestScripts(t *testing.T) {
	bin := buildOmni(t)

	engine := &script.Engine{
		Cmds:  script.DefaultCmds(),
		Conds: script.DefaultConds(),
	}
	engine.Cmds["omni"] = script.Program(bin, nil, 0)

	scripttest.Test(t, context.Background(), engine, os.Environ(), "testdata/script/*.txt")
}

// buildOmni compiles this package's binary once per test run so every .txt
// script's `omni` command runs against current code, not $PATH.
func buildOmni(t *testing.T) string {
	t.Helper()
	bin := filepath.Join(t.TempDir(), "omni")
	cmd := exec.Command("go", "build", "-o", bin, "github.com/wrkdir/omni/cmd/omni")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("building omni for script tests: %v\n%s", err, out)
	}
	return bin
}
