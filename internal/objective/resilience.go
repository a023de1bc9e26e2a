// Package objective composes plan generation, episode runs and score
// extraction into the scalar function the optimizer minimizes.
package objective

import (
	"context"
	"fmt"

	"github.com/trafficlab/signaltune/internal/runner"
	"github.com/trafficlab/signaltune/internal/signalplan"
	"github.com/trafficlab/signaltune/internal/sim"
	"github.com/trafficlab/signaltune/internal/tripinfo"
	"github.com/trafficlab/signaltune/pkg/config"
	"github.com/trafficlab/signaltune/pkg/logger"
)

// Resilience evaluates timing parameters against a fixed scenario set
type Resilience struct {
	Backend   sim.Backend
	Scenarios []config.Scenario
	Options   runner.Options
	// Penalty is the score for degenerate episodes
	Penalty float64
}

// Evaluate returns the worst-case mean waiting time across all
// scenarios for the given timing. The max reduction, not the mean, is
// what biases the search toward plans that hold up under disrupted and
// high-stress conditions.
func (r *Resilience) Evaluate(ctx context.Context, timing signalplan.Timing) (float64, error) {
	wd, err := runner.NewWorkDir()
	if err != nil {
		return 0, err
	}
	defer wd.Remove()

	if err := signalplan.Write(timing, wd.PlanPath()); err != nil {
		return 0, err
	}

	worst := 0.0
	for i, scenario := range r.Scenarios {
		launch := sim.Launch{
			ConfigPath:   scenario.Config,
			PlanPath:     wd.PlanPath(),
			TripInfoPath: wd.TripInfoPath(scenario.Name),
		}
		if err := runner.Run(ctx, r.Backend, launch, r.Options); err != nil {
			return 0, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}

		score := tripinfo.Score(launch.TripInfoPath, r.Penalty)
		logger.Debug("scenario scored",
			"scenario", scenario.Name,
			"cycle", timing.CycleLength,
			"ratio", timing.NSGreenRatio,
			"score", score)

		if i == 0 || score > worst {
			worst = score
		}
	}
	return worst, nil
}
