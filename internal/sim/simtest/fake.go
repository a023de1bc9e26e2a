// Package simtest provides an in-process fake simulator backend for
// tests.
package simtest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/trafficlab/signaltune/internal/sim"
)

// Episode scripts the behavior of one fake simulation episode
type Episode struct {
	// StartErr aborts the launch before a session exists
	StartErr error
	// EmptyAfter is the step count after which ExpectedVehicles reports
	// zero; negative means the network never drains
	EmptyAfter int
	// Report is written to the launch's trip-info path on Close; empty
	// means no report is produced (simulating a crashed run)
	Report string
	// StepErr, if set, is returned by Step once StepErrAt is reached
	StepErr   error
	StepErrAt int
}

// Backend is a scriptable sim.Backend for tests
type Backend struct {
	// Behavior scripts each episode from its launch; nil uses a
	// drains-immediately episode with a single-trip report
	Behavior func(launch sim.Launch) Episode

	mu       sync.Mutex
	launches []sim.Launch
	steps    []int
}

// Start implements sim.Backend
func (b *Backend) Start(_ context.Context, launch sim.Launch) (sim.Session, error) {
	ep := Episode{EmptyAfter: 0, Report: MakeReport(1)}
	if b.Behavior != nil {
		ep = b.Behavior(launch)
	}
	if ep.StartErr != nil {
		return nil, ep.StartErr
	}

	b.mu.Lock()
	b.launches = append(b.launches, launch)
	idx := len(b.launches) - 1
	b.steps = append(b.steps, 0)
	b.mu.Unlock()

	return &fakeSession{backend: b, idx: idx, launch: launch, ep: ep}, nil
}

// Launches returns a copy of every launch seen so far
func (b *Backend) Launches() []sim.Launch {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]sim.Launch, len(b.launches))
	copy(out, b.launches)
	return out
}

// Steps returns the number of steps taken by the i-th episode
func (b *Backend) Steps(i int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.steps[i]
}

type fakeSession struct {
	backend *Backend
	idx     int
	launch  sim.Launch
	ep      Episode
	stepped int
	closed  bool
}

func (s *fakeSession) Step() error {
	if s.ep.StepErr != nil && s.stepped >= s.ep.StepErrAt {
		return s.ep.StepErr
	}
	s.stepped++
	s.backend.mu.Lock()
	s.backend.steps[s.idx] = s.stepped
	s.backend.mu.Unlock()
	return nil
}

func (s *fakeSession) ExpectedVehicles() (int, error) {
	if s.ep.EmptyAfter >= 0 && s.stepped >= s.ep.EmptyAfter {
		return 0, nil
	}
	return 1, nil
}

func (s *fakeSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.ep.Report == "" {
		return nil
	}
	return os.WriteFile(s.launch.TripInfoPath, []byte(s.ep.Report), 0o644)
}

// MakeReport builds a trip report document with the given waiting times
func MakeReport(waits ...float64) string {
	var sb strings.Builder
	sb.WriteString("<tripinfos>\n")
	for i, w := range waits {
		fmt.Fprintf(&sb, `    <tripinfo id="veh%d" duration="100.0" waitingTime="%.1f"/>`+"\n", i, w)
	}
	sb.WriteString("</tripinfos>\n")
	return sb.String()
}

// EmptyReport is a well-formed report with zero completed trips
const EmptyReport = "<tripinfos>\n</tripinfos>\n"
