// Package sim defines the contract between the tuning drivers and a
// microscopic traffic simulator.
package sim

import "context"

// Launch describes one simulation episode
type Launch struct {
	// ConfigPath references the scenario configuration file
	ConfigPath string
	// PlanPath optionally overrides the simulator's traffic-light logic
	// with a generated plan file; empty means use the built-in default
	PlanPath string
	// TripInfoPath is where the simulator must write its trip report
	TripInfoPath string
}

// Session is a running simulation episode. Sessions are not safe for
// concurrent use; drive each from a single goroutine.
type Session interface {
	// Step advances the simulation by one discrete time step
	Step() error
	// ExpectedVehicles reports how many vehicles are still in the
	// network or waiting to be inserted
	ExpectedVehicles() (int, error)
	// Close terminates the episode and releases its resources. The
	// simulator flushes the trip report on close.
	Close() error
}

// Backend starts simulation episodes
type Backend interface {
	Start(ctx context.Context, launch Launch) (Session, error)
}
