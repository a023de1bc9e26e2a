// Package evaluate runs the fixed plan-by-scenario comparison sweep and
// reports its results.
package evaluate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/trafficlab/signaltune/internal/chart"
	"github.com/trafficlab/signaltune/internal/runner"
	"github.com/trafficlab/signaltune/internal/sim"
	"github.com/trafficlab/signaltune/internal/tripinfo"
	"github.com/trafficlab/signaltune/pkg/config"
	"github.com/trafficlab/signaltune/pkg/logger"
	"github.com/trafficlab/signaltune/pkg/utils"
)

// Driver measures every configured plan against every configured
// scenario. No optimization happens here.
type Driver struct {
	Config  *config.Config
	Backend sim.Backend
}

// Run executes the full sweep and persists the comparison table and
// chart. Cells are independent runs with private work directories, so
// the sweep may be parallelized by configuration.
func (d *Driver) Run(ctx context.Context) (*Table, error) {
	cfg := d.Config

	scenarioNames := make([]string, len(cfg.Scenarios))
	for i, s := range cfg.Scenarios {
		scenarioNames[i] = s.Name
	}
	planNames := make([]string, len(cfg.Plans))
	for i, p := range cfg.Plans {
		planNames[i] = p.Name
	}
	table := NewTable(scenarioNames, planNames)

	// More workers than cells buys nothing
	cells := len(cfg.Scenarios) * len(cfg.Plans)
	limit := utils.Clamp(cfg.Evaluation.Parallelism, 1, cells)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for si, scenario := range cfg.Scenarios {
		for pi, plan := range cfg.Plans {
			si, scenario, pi, plan := si, scenario, pi, plan
			g.Go(func() error {
				score, err := d.evaluateCell(ctx, scenario, plan)
				if err != nil {
					return err
				}
				// Each goroutine owns exactly one cell
				table.Cells[si][pi] = score
				logger.Info("evaluated",
					"plan", plan.Name,
					"scenario", scenario.Name,
					"avg_wait", score)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := d.persist(table); err != nil {
		return nil, err
	}
	return table, nil
}

// evaluateCell runs one plan against one scenario and reduces the trip
// report to its mean waiting time
func (d *Driver) evaluateCell(ctx context.Context, scenario config.Scenario, plan config.Plan) (float64, error) {
	wd, err := runner.NewWorkDir()
	if err != nil {
		return 0, err
	}
	defer wd.Remove()

	launch := sim.Launch{
		ConfigPath:   scenario.Config,
		PlanPath:     plan.File,
		TripInfoPath: wd.TripInfoPath(scenario.Name),
	}
	opts := runner.Options{
		MaxSteps:    d.Config.Simulation.MaxSteps,
		SettleSteps: d.Config.Simulation.SettleSteps,
	}
	if err := runner.Run(ctx, d.Backend, launch, opts); err != nil {
		return 0, fmt.Errorf("plan %s: %w", plan.Name, err)
	}

	return tripinfo.Score(launch.TripInfoPath, d.Config.EvaluationPenalty()), nil
}

// persist writes the CSV table and the grouped bar chart
func (d *Driver) persist(table *Table) error {
	cfg := d.Config.Evaluation

	if cfg.ResultsCSV != "" {
		if err := table.WriteCSV(cfg.ResultsCSV); err != nil {
			return err
		}
		logger.Info("comparison table saved", "path", cfg.ResultsCSV)
	}

	if cfg.ComparisonChart != "" {
		err := chart.GroupedBars(
			table.Scenarios,
			table.Plans,
			table.Cells,
			"Performance Comparison of Signal Plans Across Scenarios",
			"Average Vehicle Wait Time (s)",
			cfg.ComparisonChart,
		)
		if err != nil {
			return err
		}
		logger.Info("comparison chart saved", "path", cfg.ComparisonChart)
	}
	return nil
}
