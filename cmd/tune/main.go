// Command tune searches the signal-timing space for the most resilient
// plan and persists it alongside diagnostic charts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/trafficlab/signaltune/internal/optimize"
	"github.com/trafficlab/signaltune/internal/sim/sumo"
	"github.com/trafficlab/signaltune/pkg/config"
	"github.com/trafficlab/signaltune/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (optional)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Error("failed to load configuration", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	logger.SetDefault(logger.NewText(cfg.LogLevel, os.Stderr))

	// A missing simulator install is a broken environment; fail before
	// any work starts
	if _, err := sumo.FindBinary(cfg.Simulation.GUI); err != nil {
		logger.Error("simulator not available", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(sigChan)
		cancel()
	}()
	go func() {
		sig := <-sigChan
		logger.Info("interrupt received, shutting down", "signal", sig)
		cancel()
	}()

	driver := &optimize.Driver{
		Config:  cfg,
		Backend: sumo.NewBackend(cfg.Simulation.GUI),
	}

	result, err := driver.Run(ctx)
	if err != nil {
		logger.Error("optimization failed", "error", err)
		os.Exit(1)
	}

	fmt.Println("\nOptimization Finished")
	fmt.Println("Best parameters found:")
	fmt.Printf("Optimal Cycle Length: %d s\n", result.Best.CycleLength)
	fmt.Printf("Optimal N-S Green Ratio: %.3f\n", result.Best.NSGreenRatio)
	fmt.Printf("Best resilience score: %.2f s\n", result.BestScore)
	fmt.Printf("Resilient plan saved to %s\n", cfg.Optimization.BestPlan)
}
