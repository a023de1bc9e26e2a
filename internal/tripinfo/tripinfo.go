// Package tripinfo reduces simulator trip-completion reports to scalar
// waiting-time scores.
package tripinfo

import (
	"encoding/xml"
	"fmt"
	"os"

	"gonum.org/v1/gonum/stat"
)

// Trip is one completed vehicle journey
type Trip struct {
	ID          string  `xml:"id,attr"`
	Duration    float64 `xml:"duration,attr"`
	WaitingTime float64 `xml:"waitingTime,attr"`
}

// Report is a parsed trip-completion file
type Report struct {
	XMLName xml.Name `xml:"tripinfos"`
	Trips   []Trip   `xml:"tripinfo"`
}

// Parse reads and decodes a trip report file
func Parse(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trip report %s: %w", path, err)
	}
	var report Report
	if err := xml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse trip report %s: %w", path, err)
	}
	return &report, nil
}

// MeanWaitingTime returns the arithmetic mean waiting time across trips
func (r *Report) MeanWaitingTime() float64 {
	if len(r.Trips) == 0 {
		return 0
	}
	waits := make([]float64, len(r.Trips))
	for i, trip := range r.Trips {
		waits[i] = trip.WaitingTime
	}
	return stat.Mean(waits, nil)
}

// Score reduces the report at path to a scalar cost. A missing, malformed
// or empty report yields the penalty: the optimizer must see degenerate
// episodes as maximally undesirable, never as missing data.
func Score(path string, penalty float64) float64 {
	report, err := Parse(path)
	if err != nil {
		return penalty
	}
	if len(report.Trips) == 0 {
		return penalty
	}
	return report.MeanWaitingTime()
}
