// Package optimize runs the sequential model-based search over the
// two-dimensional timing space.
package optimize

import (
	"context"
	"fmt"

	"github.com/c-bata/goptuna"
	"github.com/c-bata/goptuna/tpe"

	"github.com/trafficlab/signaltune/internal/signalplan"
	"github.com/trafficlab/signaltune/pkg/config"
	"github.com/trafficlab/signaltune/pkg/logger"
)

// Objective is the scalar function the search minimizes
type Objective func(ctx context.Context, timing signalplan.Timing) (float64, error)

// Evaluation is one point of the search trace
type Evaluation struct {
	Iteration int
	Timing    signalplan.Timing
	Score     float64
}

// Result is the outcome of a completed search
type Result struct {
	Best      signalplan.Timing
	BestScore float64
	Trace     []Evaluation
}

// newSampler builds the proposal strategy named by the configuration.
// The surrogate model is swappable without touching the objective. The
// random sampler is bit-reproducible for a fixed seed; the TPE sampler
// is seeded but its surrogate proposals can differ between runs, so it
// is opt-in.
func newSampler(cfg config.Optimization) (goptuna.Sampler, error) {
	switch cfg.Sampler {
	case "tpe":
		return tpe.NewSampler(
			tpe.SamplerOptionSeed(cfg.Seed),
			tpe.SamplerOptionNumberOfStartupTrials(cfg.StartupTrials),
		), nil
	case "random":
		return goptuna.NewRandomSampler(
			goptuna.RandomSamplerOptionSeed(cfg.Seed),
		), nil
	default:
		return nil, fmt.Errorf("unknown sampler: %s", cfg.Sampler)
	}
}

// Search runs the full evaluation budget against the objective and
// returns the best timing found along with the evaluation trace. A
// fixed seed makes the search reproducible.
func Search(ctx context.Context, cfg config.Optimization, fn Objective) (*Result, error) {
	sampler, err := newSampler(cfg)
	if err != nil {
		return nil, err
	}

	study, err := goptuna.CreateStudy(
		"signaltune",
		goptuna.StudyOptionSampler(sampler),
		goptuna.StudyOptionDirection(goptuna.StudyDirectionMinimize),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create study: %w", err)
	}

	// Optimize runs the objective sequentially, so appending to the
	// trace without a lock is safe.
	var trace []Evaluation
	wrapped := func(trial goptuna.Trial) (float64, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		cycle, err := trial.SuggestInt("cycle_length", cfg.Space.CycleMin, cfg.Space.CycleMax)
		if err != nil {
			return 0, err
		}
		ratio, err := trial.SuggestFloat("ns_green_ratio", cfg.Space.RatioMin, cfg.Space.RatioMax)
		if err != nil {
			return 0, err
		}

		timing := signalplan.Timing{CycleLength: cycle, NSGreenRatio: ratio}
		score, err := fn(ctx, timing)
		if err != nil {
			return 0, err
		}

		trace = append(trace, Evaluation{
			Iteration: len(trace) + 1,
			Timing:    timing,
			Score:     score,
		})
		logger.Info("evaluated candidate",
			"iteration", len(trace),
			"cycle", cycle,
			"ratio", ratio,
			"score", score)
		return score, nil
	}

	if err := study.Optimize(wrapped, cfg.Calls); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	bestScore, err := study.GetBestValue()
	if err != nil {
		return nil, fmt.Errorf("no best value: %w", err)
	}
	params, err := study.GetBestParams()
	if err != nil {
		return nil, fmt.Errorf("no best parameters: %w", err)
	}

	best := signalplan.Timing{
		CycleLength:  asInt(params["cycle_length"]),
		NSGreenRatio: asFloat(params["ns_green_ratio"]),
	}
	return &Result{Best: best, BestScore: bestScore, Trace: trace}, nil
}

// asInt converts a stored parameter back to an int
func asInt(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	default:
		return 0
	}
}

// asFloat converts a stored parameter back to a float64
func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	default:
		return 0
	}
}
