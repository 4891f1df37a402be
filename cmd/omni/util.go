package main

import (
	"os"
	"path/filepath"

	"github.com/wrkdir/omni/internal/xdg"
)

func osGetwd() (string, error) { return os.Getwd() }

func osGetpid() int { return os.Getpid() }

// userConfigPath is the user-scope config document per spec.md §4.1's
// resolution order, ConfigHome()/config.yaml.
func userConfigPath() string {
	return filepath.Join(xdg.ConfigHome(), "config.yaml")
}
