package sumo

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestFindBinaryNoHome(t *testing.T) {
	t.Setenv("SUMO_HOME", "")
	if _, err := FindBinary(false); !errors.Is(err, ErrNoSumoHome) {
		t.Fatalf("expected ErrNoSumoHome, got %v", err)
	}
}

func TestFindBinaryMissingExecutable(t *testing.T) {
	t.Setenv("SUMO_HOME", t.TempDir())
	if _, err := FindBinary(false); err == nil {
		t.Fatalf("expected error for missing binary")
	}
}

func TestFindBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("binary naming differs on windows")
	}

	home := t.TempDir()
	binDir := filepath.Join(home, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("failed to create bin dir: %v", err)
	}
	for _, name := range []string{"sumo", "sumo-gui"} {
		if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatalf("failed to create fake binary: %v", err)
		}
	}
	t.Setenv("SUMO_HOME", home)

	path, err := FindBinary(false)
	if err != nil {
		t.Fatalf("FindBinary failed: %v", err)
	}
	if path != filepath.Join(binDir, "sumo") {
		t.Fatalf("unexpected path %s", path)
	}

	path, err = FindBinary(true)
	if err != nil {
		t.Fatalf("FindBinary gui failed: %v", err)
	}
	if path != filepath.Join(binDir, "sumo-gui") {
		t.Fatalf("unexpected gui path %s", path)
	}
}
