package optimize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trafficlab/signaltune/internal/chart"
	"github.com/trafficlab/signaltune/internal/objective"
	"github.com/trafficlab/signaltune/internal/runner"
	"github.com/trafficlab/signaltune/internal/signalplan"
	"github.com/trafficlab/signaltune/internal/sim"
	"github.com/trafficlab/signaltune/pkg/config"
	"github.com/trafficlab/signaltune/pkg/logger"
)

// Driver runs the full tuning workflow: search, best-plan persistence
// and diagnostic charts
type Driver struct {
	Config  *config.Config
	Backend sim.Backend
}

// Run executes the search and persists its artifacts
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	cfg := d.Config

	res := &objective.Resilience{
		Backend:   d.Backend,
		Scenarios: cfg.Scenarios,
		Options: runner.Options{
			MaxSteps:    cfg.Simulation.MaxSteps,
			SettleSteps: cfg.Simulation.SettleSteps,
		},
		Penalty: cfg.TuningPenalty(),
	}

	logger.Info("starting optimization",
		"calls", cfg.Optimization.Calls,
		"startup_trials", cfg.Optimization.StartupTrials,
		"sampler", cfg.Optimization.Sampler,
		"seed", cfg.Optimization.Seed)

	result, err := Search(ctx, cfg.Optimization, res.Evaluate)
	if err != nil {
		return nil, err
	}

	logger.Info("optimization finished",
		"best_cycle", result.Best.CycleLength,
		"best_ratio", result.Best.NSGreenRatio,
		"best_score", result.BestScore)

	if err := d.persistBestPlan(result); err != nil {
		return nil, err
	}
	if err := d.renderCharts(result); err != nil {
		return nil, err
	}
	return result, nil
}

// persistBestPlan regenerates the winning plan under its durable name
// for the final evaluation sweep
func (d *Driver) persistBestPlan(result *Result) error {
	path := d.Config.Optimization.BestPlan
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create plan directory %s: %w", dir, err)
		}
	}
	if err := signalplan.Write(result.Best, path); err != nil {
		return err
	}
	logger.Info("resilient plan saved", "path", path)
	return nil
}

// renderCharts writes the convergence and objective-landscape images.
// Either chart can be disabled by leaving its path empty.
func (d *Driver) renderCharts(result *Result) error {
	opt := d.Config.Optimization

	if opt.ConvergenceChart != "" {
		scores := make([]float64, len(result.Trace))
		for i, ev := range result.Trace {
			scores[i] = ev.Score
		}
		if err := chart.Convergence(scores, opt.ConvergenceChart); err != nil {
			return fmt.Errorf("failed to render convergence chart: %w", err)
		}
	}

	if opt.LandscapeChart != "" {
		points := make([]chart.Point, len(result.Trace))
		for i, ev := range result.Trace {
			points[i] = chart.Point{
				X: float64(ev.Timing.CycleLength),
				Y: ev.Timing.NSGreenRatio,
				Z: ev.Score,
			}
		}
		bounds := chart.Bounds{
			XMin: float64(opt.Space.CycleMin),
			XMax: float64(opt.Space.CycleMax),
			YMin: opt.Space.RatioMin,
			YMax: opt.Space.RatioMax,
		}
		if err := chart.Landscape(points, bounds, opt.LandscapeChart); err != nil {
			return fmt.Errorf("failed to render landscape chart: %w", err)
		}
	}
	return nil
}
