package evaluate

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// Table holds mean waiting times keyed by (scenario, plan)
type Table struct {
	Scenarios []string
	Plans     []string
	// Cells is indexed [scenario][plan]
	Cells [][]float64
}

// NewTable allocates a zero-filled table for the given registries
func NewTable(scenarios, plans []string) *Table {
	cells := make([][]float64, len(scenarios))
	for i := range cells {
		cells[i] = make([]float64, len(plans))
	}
	return &Table{Scenarios: scenarios, Plans: plans, Cells: cells}
}

// Get returns the cell for the named scenario and plan
func (t *Table) Get(scenario, plan string) (float64, bool) {
	for si, s := range t.Scenarios {
		if s != scenario {
			continue
		}
		for pi, p := range t.Plans {
			if p == plan {
				return t.Cells[si][pi], true
			}
		}
	}
	return 0, false
}

// WriteCSV persists the table with scenario rows and plan columns
func (t *Table) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append([]string{"Scenario"}, t.Plans...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write results header: %w", err)
	}
	for si, scenario := range t.Scenarios {
		row := make([]string, 0, len(t.Plans)+1)
		row = append(row, scenario)
		for _, cell := range t.Cells[si] {
			row = append(row, strconv.FormatFloat(cell, 'f', 2, 64))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write results row for %s: %w", scenario, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush results: %w", err)
	}
	return nil
}
