// Package chart renders the diagnostic and comparison images: search
// convergence, estimated objective landscape, and the final plan
// comparison bars.
package chart

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/trafficlab/signaltune/pkg/utils"
)

// Point is one evaluated parameter set with its score
type Point struct {
	X, Y, Z float64
}

// Bounds delimits the parameter space for landscape rendering
type Bounds struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Convergence plots per-iteration scores and the running best
func Convergence(scores []float64, path string) error {
	if len(scores) == 0 {
		return fmt.Errorf("no evaluations to plot")
	}

	p := plot.New()
	p.Title.Text = "Optimization Convergence"
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Resilience Score (s)"

	raw := make(plotter.XYs, len(scores))
	best := make(plotter.XYs, len(scores))
	running := scores[0]
	for i, s := range scores {
		if s < running {
			running = s
		}
		raw[i] = plotter.XY{X: float64(i + 1), Y: s}
		best[i] = plotter.XY{X: float64(i + 1), Y: running}
	}

	line, err := plotter.NewLine(best)
	if err != nil {
		return fmt.Errorf("failed to build best-so-far line: %w", err)
	}
	line.Color = plotutil.Color(0)

	points, err := plotter.NewScatter(raw)
	if err != nil {
		return fmt.Errorf("failed to build evaluation scatter: %w", err)
	}
	points.GlyphStyle.Color = plotutil.Color(1)
	points.GlyphStyle.Radius = vg.Points(2)

	p.Add(line, points)
	p.Legend.Add("best so far", line)
	p.Legend.Add("evaluations", points)
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	return nil
}

// landscapeResolution is the grid edge used for the heatmap
const landscapeResolution = 60

// Landscape renders an inverse-distance-weighted estimate of the
// objective over the parameter grid from the evaluated points
func Landscape(points []Point, bounds Bounds, path string) error {
	if len(points) == 0 {
		return fmt.Errorf("no evaluations to plot")
	}

	grid := newIDWGrid(points, bounds, landscapeResolution)
	heat := plotter.NewHeatMap(grid, moreland.SmoothBlueRed().Palette(64))

	p := plot.New()
	p.Title.Text = "Estimated Objective Landscape"
	p.X.Label.Text = "Cycle Length (s)"
	p.Y.Label.Text = "N-S Green Ratio"
	p.Add(heat)

	evaluated := make(plotter.XYs, len(points))
	for i, pt := range points {
		evaluated[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	scatter, err := plotter.NewScatter(evaluated)
	if err != nil {
		return fmt.Errorf("failed to build evaluation scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(2)
	p.Add(scatter)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	return nil
}

// GroupedBars renders one bar group per row with one bar per column
func GroupedBars(rows, cols []string, cells [][]float64, title, yLabel, path string) error {
	if len(rows) == 0 || len(cols) == 0 {
		return fmt.Errorf("nothing to plot")
	}
	if len(cells) != len(rows) {
		return fmt.Errorf("expected %d rows of cells, got %d", len(rows), len(cells))
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel

	barWidth := vg.Points(60 / float64(len(cols)))
	for c, name := range cols {
		values := make(plotter.Values, len(rows))
		for r := range rows {
			if len(cells[r]) != len(cols) {
				return fmt.Errorf("row %d has %d cells, expected %d", r, len(cells[r]), len(cols))
			}
			values[r] = cells[r][c]
		}

		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return fmt.Errorf("failed to build bars for %s: %w", name, err)
		}
		bars.LineStyle.Width = 0
		bars.Color = plotutil.Color(c)
		bars.Offset = barWidth * vg.Length(float64(c)-float64(len(cols)-1)/2)

		p.Add(bars)
		p.Legend.Add(name, bars)
	}

	p.Legend.Top = true
	p.NominalX(rows...)

	if err := p.Save(10*vg.Inch, 7*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	return nil
}

// idwGrid estimates the objective over a regular grid by inverse
// distance weighting of the evaluated points, with coordinates
// normalized so both parameters contribute equally
type idwGrid struct {
	xs, ys []float64
	zs     [][]float64
}

func newIDWGrid(points []Point, bounds Bounds, resolution int) *idwGrid {
	xs := utils.Linspace(bounds.XMin, bounds.XMax, resolution)
	ys := utils.Linspace(bounds.YMin, bounds.YMax, resolution)

	xSpan := bounds.XMax - bounds.XMin
	ySpan := bounds.YMax - bounds.YMin

	zs := make([][]float64, resolution)
	for c := range xs {
		zs[c] = make([]float64, resolution)
		for r := range ys {
			zs[c][r] = estimate(points, xs[c], ys[r], xSpan, ySpan)
		}
	}
	return &idwGrid{xs: xs, ys: ys, zs: zs}
}

// estimate computes the IDW value at (x, y)
func estimate(points []Point, x, y, xSpan, ySpan float64) float64 {
	const eps = 1e-6

	var num, den float64
	for _, p := range points {
		dx := (p.X - x) / xSpan
		dy := (p.Y - y) / ySpan
		w := 1.0 / (dx*dx + dy*dy + eps)
		num += w * p.Z
		den += w
	}
	return num / den
}

func (g *idwGrid) Dims() (c, r int)   { return len(g.xs), len(g.ys) }
func (g *idwGrid) X(c int) float64    { return g.xs[c] }
func (g *idwGrid) Y(r int) float64    { return g.ys[r] }
func (g *idwGrid) Z(c, r int) float64 { return g.zs[c][r] }
