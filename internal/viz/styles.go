package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/phnet/internal/audit"
	"github.com/san-kum/phnet/internal/integrators"
)

func titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Primary)
}

func labelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
}

func valueStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Text)
}

func keyStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Primary)
}

// StatusBadge renders an audit status as an upper-case colored label.
func StatusBadge(s audit.Status) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(CurrentTheme.status(s)).
		Render(strings.ToUpper(string(s)))
}

// DriftText colors a relative drift by the warning threshold.
func DriftText(drift float64) string {
	c := CurrentTheme.Success
	switch {
	case drift > 10*integrators.DriftWarningThreshold:
		c = CurrentTheme.Error
	case drift > integrators.DriftWarningThreshold:
		c = CurrentTheme.Warning
	}
	return lipgloss.NewStyle().Foreground(c).Render(fmt.Sprintf("%.3e", drift))
}

func field(label, value string) string {
	return labelStyle().Render(label+" ") + valueStyle().Render(value)
}

// Separator draws a muted rule.
func Separator(width int) string {
	if width < 8 {
		width = 8
	}
	mid := width / 2
	return labelStyle().Render(strings.Repeat("─", mid-3) + " ◆ " + strings.Repeat("─", width-mid-3))
}

// SparklineChart renders values as a one-line bar chart of the given width.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := max(len(values)/width, 1)
	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := min(max(int(norm*float64(len(chars)-1)), 0), len(chars)-1)
		b.WriteRune(chars[idx])
	}
	return b.String()
}
