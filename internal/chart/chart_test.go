package chart

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func assertPNG(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("chart was not written: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("chart file %s is empty", path)
	}
}

func TestConvergence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "convergence.png")
	scores := []float64{120, 80, 95, 60, 70, 55}
	if err := Convergence(scores, path); err != nil {
		t.Fatalf("Convergence failed: %v", err)
	}
	assertPNG(t, path)
}

func TestConvergenceEmpty(t *testing.T) {
	if err := Convergence(nil, filepath.Join(t.TempDir(), "c.png")); err == nil {
		t.Fatalf("expected error for empty trace")
	}
}

func TestLandscape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "landscape.png")
	points := []Point{
		{X: 30, Y: 0.35, Z: 100},
		{X: 60, Y: 0.5, Z: 40},
		{X: 90, Y: 0.65, Z: 80},
		{X: 110, Y: 0.4, Z: 120},
	}
	bounds := Bounds{XMin: 20, XMax: 120, YMin: 0.3, YMax: 0.7}
	if err := Landscape(points, bounds, path); err != nil {
		t.Fatalf("Landscape failed: %v", err)
	}
	assertPNG(t, path)
}

func TestLandscapeEmpty(t *testing.T) {
	bounds := Bounds{XMin: 20, XMax: 120, YMin: 0.3, YMax: 0.7}
	if err := Landscape(nil, bounds, filepath.Join(t.TempDir(), "l.png")); err == nil {
		t.Fatalf("expected error for empty trace")
	}
}

func TestGroupedBars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comparison.png")
	rows := []string{"Normal", "High-Stress", "Disrupted"}
	cols := []string{"Default-SUMO", "Optimized-for-Normal", "Optimized-for-Resilience"}
	cells := [][]float64{
		{30, 20, 25},
		{200, 150, 90},
		{120, 110, 60},
	}
	if err := GroupedBars(rows, cols, cells, "Performance Comparison", "Avg. Wait Time (s)", path); err != nil {
		t.Fatalf("GroupedBars failed: %v", err)
	}
	assertPNG(t, path)
}

func TestGroupedBarsShapeMismatch(t *testing.T) {
	err := GroupedBars(
		[]string{"Normal"},
		[]string{"A", "B"},
		[][]float64{{1}},
		"t", "y",
		filepath.Join(t.TempDir(), "bad.png"),
	)
	if err == nil {
		t.Fatalf("expected error for ragged cells")
	}
}

func TestEstimateConstantField(t *testing.T) {
	points := []Point{
		{X: 20, Y: 0.3, Z: 42},
		{X: 120, Y: 0.7, Z: 42},
	}
	got := estimate(points, 70, 0.5, 100, 0.4)
	if math.Abs(got-42) > 1e-9 {
		t.Fatalf("constant field should estimate to 42, got %f", got)
	}
}

func TestEstimateNearestDominates(t *testing.T) {
	points := []Point{
		{X: 20, Y: 0.3, Z: 0},
		{X: 120, Y: 0.7, Z: 100},
	}
	// Query essentially on top of the second point
	got := estimate(points, 120, 0.7, 100, 0.4)
	if got < 99 {
		t.Fatalf("nearest point should dominate, got %f", got)
	}
}
