package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/phnet/internal/integrators"
	"github.com/san-kum/phnet/internal/sim"
)

// PlotSeries draws one series. Empty or single-point data yields "".
func PlotSeries(data []float64, caption string, width, height int) string {
	if len(data) < 2 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// Field extracts one scalar per sample.
type Field func(integrators.Sample) float64

var (
	EnergyField Field = func(s integrators.Sample) float64 { return s.Energy }
	DriftField  Field = func(s integrators.Sample) float64 { return s.Drift }
)

// ComponentField selects x[i].
func ComponentField(i int) Field {
	return func(s integrators.Sample) float64 {
		if i < 0 || i >= len(s.X) {
			return 0
		}
		return s.X[i]
	}
}

func Extract(samples []integrators.Sample, f Field) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = f(s)
	}
	return out
}

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Cyan, asciigraph.Magenta, asciigraph.Yellow,
	asciigraph.Green, asciigraph.Red, asciigraph.Blue,
}

var seriesLipgloss = []lipgloss.Color{"6", "5", "3", "2", "1", "4"}

// PlotComparison overlays f for several runs with a color legend. Runs
// without recorded samples are skipped.
func PlotComparison(results []*sim.Result, f Field, caption string, width, height int) string {
	var series [][]float64
	var colors []asciigraph.AnsiColor
	var legend []string
	for i, r := range results {
		if len(r.Samples) < 2 {
			continue
		}
		series = append(series, Extract(r.Samples, f))
		colors = append(colors, seriesColors[i%len(seriesColors)])
		legend = append(legend, lipgloss.NewStyle().
			Foreground(seriesLipgloss[i%len(seriesLipgloss)]).
			Render("■ "+string(r.Method)))
	}
	if len(series) == 0 {
		return ""
	}

	chart := asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
	)
	return chart + "\n" + strings.Join(legend, "  ")
}
