// Package runner drives individual simulation episodes and manages
// their per-run working directories.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/trafficlab/signaltune/internal/sim"
	"github.com/trafficlab/signaltune/pkg/logger"
)

// Options bounds one episode
type Options struct {
	// MaxSteps is the hard step ceiling
	MaxSteps int
	// SettleSteps is the initial period during which an empty network
	// does not end the episode; it avoids stopping on the transient
	// empty state before vehicles are inserted
	SettleSteps int
}

// Run drives one episode to completion or step exhaustion and closes the
// session. The simulator leaves its trip report at launch.TripInfoPath.
func Run(ctx context.Context, backend sim.Backend, launch sim.Launch, opts Options) error {
	session, err := backend.Start(ctx, launch)
	if err != nil {
		return fmt.Errorf("failed to start episode for %s: %w", launch.ConfigPath, err)
	}

	steps := 0
	for ; steps < opts.MaxSteps; steps++ {
		if err := ctx.Err(); err != nil {
			_ = session.Close()
			return err
		}
		if err := session.Step(); err != nil {
			_ = session.Close()
			return fmt.Errorf("episode for %s failed at step %d: %w", launch.ConfigPath, steps, err)
		}

		if steps > opts.SettleSteps {
			remaining, err := session.ExpectedVehicles()
			if err != nil {
				_ = session.Close()
				return fmt.Errorf("episode for %s failed at step %d: %w", launch.ConfigPath, steps, err)
			}
			if remaining == 0 {
				break
			}
		}
	}

	logger.Debug("episode finished", "scenario", launch.ConfigPath, "steps", steps)
	return session.Close()
}

// WorkDir is a unique transient directory holding one run's plan and
// trip-report files. Unique paths keep concurrent episodes from
// corrupting each other's inputs and outputs.
type WorkDir struct {
	path string
}

// NewWorkDir creates a fresh run directory under the system temp root
func NewWorkDir() (*WorkDir, error) {
	path := filepath.Join(os.TempDir(), "signaltune-"+uuid.NewString())
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}
	return &WorkDir{path: path}, nil
}

// Path returns the directory path
func (w *WorkDir) Path() string {
	return w.path
}

// PlanPath returns the signal-plan file location for this run
func (w *WorkDir) PlanPath() string {
	return filepath.Join(w.path, "plan.add.xml")
}

// TripInfoPath returns the trip-report location for the named scenario
func (w *WorkDir) TripInfoPath(scenario string) string {
	return filepath.Join(w.path, "tripinfo_"+slug(scenario)+".xml")
}

// Remove deletes the directory and everything in it
func (w *WorkDir) Remove() error {
	return os.RemoveAll(w.path)
}

// slug reduces a scenario name to a filename-safe token
func slug(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteByte('-')
		}
	}
	return sb.String()
}
