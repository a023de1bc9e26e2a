// Command evaluate measures a fixed menu of signal plans against every
// scenario and reports a comparison table.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/trafficlab/signaltune/internal/evaluate"
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

	driver := &evaluate.Driver{
		Config:  cfg,
		Backend: sumo.NewBackend(cfg.Simulation.GUI),
	}

	table, err := driver.Run(ctx)
	if err != nil {
		logger.Error("evaluation failed", "error", err)
		os.Exit(1)
	}

	fmt.Println("\nEvaluation Complete")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprint(w, "Scenario")
	for _, plan := range table.Plans {
		fmt.Fprintf(w, "\t%s", plan)
	}
	fmt.Fprintln(w)
	for si, scenario := range table.Scenarios {
		fmt.Fprint(w, scenario)
		for _, cell := range table.Cells[si] {
			fmt.Fprintf(w, "\t%.2f", cell)
		}
		fmt.Fprintln(w)
	}
	w.Flush()

	fmt.Printf("\nResults saved to %s\n", cfg.Evaluation.ResultsCSV)
}
