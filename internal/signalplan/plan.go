// Package signalplan generates fixed-time traffic light programs for the
// 3x3 study grid from a two-parameter timing description.
package signalplan

import (
	"encoding/xml"
	"fmt"
	"os"
)

const (
	// GridSize is the edge length of the intersection grid
	GridSize = 3
	// YellowSeconds is the fixed duration of each yellow phase
	YellowSeconds = 3
	// ProgramID identifies generated programs inside the simulator
	ProgramID = "bo_plan"

	// Lane-group state strings for a standard four-way grid junction
	stateNSGreen  = "GGggrrrrGGggrrrr"
	stateNSYellow = "yyyyrrrryyyyrrrr"
	stateEWGreen  = "rrrrGGggrrrrGGgg"
	stateEWYellow = "rrrryyyyrrrryyyy"
)

// Timing is the two-parameter description of a fixed-time signal program
type Timing struct {
	// CycleLength is the total phase-cycle duration in seconds
	CycleLength int
	// NSGreenRatio is the fraction of green time given to north-south
	NSGreenRatio float64
}

// Validate checks that a timing yields a well-formed four-phase program:
// a workable split ratio and at least one second of green per direction.
// The search-space bounds are enforced separately by the configuration
// layer, so plans outside the stock [20,120] cycle range stay expressible.
func (t Timing) Validate() error {
	if t.NSGreenRatio <= 0 || t.NSGreenRatio >= 1 {
		return fmt.Errorf("ns green ratio must be in (0, 1), got %f", t.NSGreenRatio)
	}
	nsGreen, ewGreen := t.Split()
	if nsGreen < 1 || ewGreen < 1 {
		return fmt.Errorf("cycle length %d at ratio %.2f leaves a zero-length green phase",
			t.CycleLength, t.NSGreenRatio)
	}
	return nil
}

// Split returns the green durations for both directions. The total green
// time is the cycle minus both yellow phases; north-south takes the floor
// of its share so rounding error is absorbed by east-west.
func (t Timing) Split() (nsGreen, ewGreen int) {
	totalGreen := t.CycleLength - 2*YellowSeconds
	nsGreen = int(float64(totalGreen) * t.NSGreenRatio)
	ewGreen = totalGreen - nsGreen
	return nsGreen, ewGreen
}

// Phase is one entry of a static signal program
type Phase struct {
	Duration int    `xml:"duration,attr"`
	State    string `xml:"state,attr"`
}

// Logic is the static program of a single intersection
type Logic struct {
	ID        string  `xml:"id,attr"`
	Type      string  `xml:"type,attr"`
	ProgramID string  `xml:"programID,attr"`
	Offset    int     `xml:"offset,attr"`
	Phases    []Phase `xml:"phase"`
}

// Document is a simulator additional-file holding one program per
// intersection of the grid
type Document struct {
	XMLName xml.Name `xml:"additional"`
	Logics  []Logic  `xml:"tlLogic"`
}

// Phases expands a timing into its four ordered phases
func (t Timing) Phases() []Phase {
	nsGreen, ewGreen := t.Split()
	return []Phase{
		{Duration: nsGreen, State: stateNSGreen},
		{Duration: YellowSeconds, State: stateNSYellow},
		{Duration: ewGreen, State: stateEWGreen},
		{Duration: YellowSeconds, State: stateEWYellow},
	}
}

// Generate builds the plan document for the full grid. Every intersection
// receives identical timing.
func Generate(t Timing) (*Document, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing: %w", err)
	}

	doc := &Document{}
	for i := 0; i < GridSize; i++ {
		for j := 0; j < GridSize; j++ {
			doc.Logics = append(doc.Logics, Logic{
				ID:        fmt.Sprintf("J_%d_%d", i, j),
				Type:      "static",
				ProgramID: ProgramID,
				Offset:    0,
				Phases:    t.Phases(),
			})
		}
	}
	return doc, nil
}

// Write generates the plan document and overwrites the file at path
func Write(t Timing, path string) error {
	doc, err := Generate(t)
	if err != nil {
		return err
	}

	data, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode signal plan: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write signal plan %s: %w", path, err)
	}
	return nil
}
