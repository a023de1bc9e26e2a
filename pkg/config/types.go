package config

// Config represents the full tuning/evaluation configuration
type Config struct {
	LogLevel     string       `yaml:"log_level"`
	Simulation   Simulation   `yaml:"simulation"`
	Scenarios    []Scenario   `yaml:"scenarios"`
	Plans        []Plan       `yaml:"plans"`
	Optimization Optimization `yaml:"optimization"`
	Evaluation   Evaluation   `yaml:"evaluation"`
}

// Simulation holds settings shared by every simulation episode
type Simulation struct {
	// GUI selects the sumo-gui binary instead of the headless one
	GUI bool `yaml:"gui"`
	// MaxSteps is the hard per-episode step ceiling
	MaxSteps int `yaml:"max_steps"`
	// SettleSteps is the number of initial steps during which an empty
	// network does not trigger early termination
	SettleSteps int `yaml:"settle_steps"`
}

// Scenario names an external simulator scenario configuration
type Scenario struct {
	Name   string `yaml:"name"`
	Config string `yaml:"config"`
}

// Plan names a signal-plan file for the final evaluation sweep.
// An empty File means "do not override the simulator's default logic".
type Plan struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

// Space bounds the two-dimensional timing parameter search space
type Space struct {
	CycleMin int     `yaml:"cycle_min"`
	CycleMax int     `yaml:"cycle_max"`
	RatioMin float64 `yaml:"ratio_min"`
	RatioMax float64 `yaml:"ratio_max"`
}

// Optimization configures the sequential model-based search
type Optimization struct {
	// Calls is the total evaluation budget
	Calls int `yaml:"calls"`
	// StartupTrials is the number of random draws before the surrogate
	// model starts proposing candidates
	StartupTrials int `yaml:"startup_trials"`
	// Seed makes the search reproducible
	Seed int64 `yaml:"seed"`
	// Sampler selects the proposal strategy: "random" (seeded,
	// bit-reproducible) or "tpe" (model-based; seeded, but its surrogate
	// proposals are not bit-reproducible across runs)
	Sampler string `yaml:"sampler"`
	// Penalty is the score assigned to degenerate episodes; 0 means
	// MaxSteps * 10
	Penalty float64 `yaml:"penalty"`
	Space   Space   `yaml:"space"`

	// Output artifacts
	BestPlan         string `yaml:"best_plan"`
	ConvergenceChart string `yaml:"convergence_chart"`
	LandscapeChart   string `yaml:"landscape_chart"`
}

// Evaluation configures the final plan-by-scenario comparison sweep
type Evaluation struct {
	// Parallelism bounds concurrent episodes; 0 or 1 means sequential
	Parallelism int `yaml:"parallelism"`
	// Penalty is the score assigned to degenerate episodes; 0 means
	// MaxSteps. The tuning driver and the evaluation driver deliberately
	// use different penalty magnitudes.
	Penalty         float64 `yaml:"penalty"`
	ResultsCSV      string  `yaml:"results_csv"`
	ComparisonChart string  `yaml:"comparison_chart"`
}

// Default returns a configuration populated with the stock 3x3 grid setup.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Simulation: Simulation{
			MaxSteps:    3600,
			SettleSteps: 100,
		},
		Scenarios: []Scenario{
			{Name: "Normal", Config: "scenarios/grid_normal.sumocfg"},
			{Name: "High-Stress", Config: "scenarios/grid_highstress.sumocfg"},
			{Name: "Disrupted", Config: "scenarios/grid_disrupted.sumocfg"},
		},
		Plans: []Plan{
			{Name: "Default-SUMO", File: ""},
			{Name: "Optimized-for-Normal", File: "plans/plan_normal_day.add.xml"},
			{Name: "Optimized-for-Resilience", File: "plans/plan_resilient.add.xml"},
		},
		Optimization: Optimization{
			Calls:         30,
			StartupTrials: 10,
			Seed:          123,
			Sampler:       "random",
			Space: Space{
				CycleMin: 20,
				CycleMax: 120,
				RatioMin: 0.3,
				RatioMax: 0.7,
			},
			BestPlan:         "plans/plan_resilient.add.xml",
			ConvergenceChart: "bo_convergence.png",
			LandscapeChart:   "bo_objective_landscape.png",
		},
		Evaluation: Evaluation{
			Parallelism:     1,
			ResultsCSV:      "final_comparison_results.csv",
			ComparisonChart: "final_performance_comparison.png",
		},
	}
}

// TuningPenalty returns the penalty score for the optimization driver.
func (c *Config) TuningPenalty() float64 {
	if c.Optimization.Penalty > 0 {
		return c.Optimization.Penalty
	}
	return float64(c.Simulation.MaxSteps) * 10
}

// EvaluationPenalty returns the penalty score for the final evaluation
// driver. It is intentionally smaller than the tuning penalty so that
// comparison charts stay readable when a plan fails a scenario.
func (c *Config) EvaluationPenalty() float64 {
	if c.Evaluation.Penalty > 0 {
		return c.Evaluation.Penalty
	}
	return float64(c.Simulation.MaxSteps)
}
