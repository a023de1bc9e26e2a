package sumo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ErrNoSumoHome indicates the simulator install location is unknown.
// This is a broken-environment condition, not a recoverable error.
var ErrNoSumoHome = errors.New("please declare environment variable 'SUMO_HOME'")

// FindBinary locates the simulator executable under $SUMO_HOME/bin
func FindBinary(gui bool) (string, error) {
	home := os.Getenv("SUMO_HOME")
	if home == "" {
		return "", ErrNoSumoHome
	}

	name := "sumo"
	if gui {
		name = "sumo-gui"
	}
	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	path := filepath.Join(home, "bin", name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("simulator binary not found at %s: %w", path, err)
	}
	return path, nil
}
