package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads, parses and validates a configuration file. Fields absent
// from the file keep their Default() values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse parses and validates configuration YAML over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate performs validation on the configuration
func Validate(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if cfg.Simulation.MaxSteps <= 0 {
		return fmt.Errorf("simulation max_steps must be positive, got %d", cfg.Simulation.MaxSteps)
	}
	if cfg.Simulation.SettleSteps < 0 {
		return fmt.Errorf("simulation settle_steps cannot be negative, got %d", cfg.Simulation.SettleSteps)
	}
	if cfg.Simulation.SettleSteps >= cfg.Simulation.MaxSteps {
		return fmt.Errorf("simulation settle_steps (%d) must be below max_steps (%d)",
			cfg.Simulation.SettleSteps, cfg.Simulation.MaxSteps)
	}

	if len(cfg.Scenarios) == 0 {
		return fmt.Errorf("at least one scenario must be defined")
	}
	scenarioNames := make(map[string]bool)
	for _, sc := range cfg.Scenarios {
		if sc.Name == "" {
			return fmt.Errorf("scenario name cannot be empty")
		}
		if scenarioNames[sc.Name] {
			return fmt.Errorf("duplicate scenario name: %s", sc.Name)
		}
		scenarioNames[sc.Name] = true
		if sc.Config == "" {
			return fmt.Errorf("scenario %s: config reference cannot be empty", sc.Name)
		}
	}

	if len(cfg.Plans) == 0 {
		return fmt.Errorf("at least one plan must be defined")
	}
	planNames := make(map[string]bool)
	for _, p := range cfg.Plans {
		if p.Name == "" {
			return fmt.Errorf("plan name cannot be empty")
		}
		if planNames[p.Name] {
			return fmt.Errorf("duplicate plan name: %s", p.Name)
		}
		planNames[p.Name] = true
	}

	if err := validateOptimization(&cfg.Optimization); err != nil {
		return err
	}

	if cfg.Evaluation.Parallelism < 0 {
		return fmt.Errorf("evaluation parallelism cannot be negative, got %d", cfg.Evaluation.Parallelism)
	}
	if cfg.Evaluation.Penalty < 0 {
		return fmt.Errorf("evaluation penalty cannot be negative, got %f", cfg.Evaluation.Penalty)
	}

	return nil
}

// validateOptimization validates the optimization section
func validateOptimization(o *Optimization) error {
	if o.Calls <= 0 {
		return fmt.Errorf("optimization calls must be positive, got %d", o.Calls)
	}
	if o.StartupTrials <= 0 {
		return fmt.Errorf("optimization startup_trials must be positive, got %d", o.StartupTrials)
	}
	if o.StartupTrials > o.Calls {
		return fmt.Errorf("optimization startup_trials (%d) cannot exceed calls (%d)", o.StartupTrials, o.Calls)
	}
	if o.Sampler != "tpe" && o.Sampler != "random" {
		return fmt.Errorf("invalid sampler: %s (must be tpe or random)", o.Sampler)
	}
	if o.Penalty < 0 {
		return fmt.Errorf("optimization penalty cannot be negative, got %f", o.Penalty)
	}

	s := o.Space
	if s.CycleMin <= 0 {
		return fmt.Errorf("space cycle_min must be positive, got %d", s.CycleMin)
	}
	if s.CycleMax <= s.CycleMin {
		return fmt.Errorf("space cycle_max (%d) must exceed cycle_min (%d)", s.CycleMax, s.CycleMin)
	}
	// Two 3-second yellow phases must always fit in the cycle
	if s.CycleMin < 7 {
		return fmt.Errorf("space cycle_min must be at least 7 to leave room for yellow phases, got %d", s.CycleMin)
	}
	if s.RatioMin <= 0 || s.RatioMin >= 1 {
		return fmt.Errorf("space ratio_min must be in (0, 1), got %f", s.RatioMin)
	}
	if s.RatioMax <= s.RatioMin || s.RatioMax >= 1 {
		return fmt.Errorf("space ratio_max must be in (ratio_min, 1), got %f", s.RatioMax)
	}

	if o.BestPlan == "" {
		return fmt.Errorf("optimization best_plan path cannot be empty")
	}

	return nil
}
