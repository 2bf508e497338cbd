package viz

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/san-kum/phnet/internal/audit"
	"github.com/san-kum/phnet/internal/graph"
	"github.com/san-kum/phnet/internal/matrix"
	"github.com/san-kum/phnet/internal/sim"
	"github.com/san-kum/phnet/internal/spectral"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(labelStyle()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return titleStyle().Padding(0, 1)
			}
			return valueStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func vertexNames(g *graph.Graph, idx []int) string {
	names := make([]string, len(idx))
	for i, v := range idx {
		names[i] = g.Vertex(v)
	}
	return strings.Join(names, " ")
}

func edgeList(g *graph.Graph, idx []int) string {
	parts := make([]string, len(idx))
	for i, e := range idx {
		parts[i] = g.Edge(e).String()
	}
	return strings.Join(parts, ", ")
}

// RenderAudit formats a report for the graph it was produced from.
func RenderAudit(g *graph.Graph, r *audit.Report) string {
	var b strings.Builder
	b.WriteString(titleStyle().Render("AUDIT") + "  " + StatusBadge(r.Status) + "\n")
	s := r.Summary
	b.WriteString(strings.Join([]string{
		field("nodes", strconv.Itoa(s.NodeCount)),
		field("edges", strconv.Itoa(s.EdgeCount)),
		field("dim", strconv.Itoa(s.StateSpaceDim)),
		field("inertia", strconv.Itoa(s.InertiaCount)),
		field("stiffness", strconv.Itoa(s.StiffnessCount)),
		field("grounded", strconv.Itoa(s.GroundedCount)),
	}, "  ") + "\n")

	if r.Partition != nil {
		b.WriteString(field("P", vertexNames(g, r.Partition.P)) + "\n")
		b.WriteString(field("Q", vertexNames(g, r.Partition.Q)) + "\n")
	}
	if len(r.Grounded) > 0 {
		b.WriteString(field("grounded", strings.Join(r.Grounded, " ")) + "\n")
	}

	if len(r.Violations) > 0 {
		t := newTable("kind", "vertex", "edges", "message")
		for _, v := range r.Violations {
			t.Row(string(v.Kind), v.Vertex, edgeList(g, v.Edges), v.Message)
		}
		b.WriteString(t.Render() + "\n")
	}

	if r.Incidence != nil && r.Incidence.Mat.Rows() > 0 && r.Incidence.Mat.Cols() > 0 {
		b.WriteString(labelStyle().Render("incidence (rows P, cols Q)") + "\n")
		b.WriteString(matrix.Format(r.Incidence.Mat))
	}
	return b.String()
}

// RenderRectification lists the flipped edges and the audit that followed.
func RenderRectification(rect *audit.Rectification) string {
	var b strings.Builder
	b.WriteString(titleStyle().Render("RECTIFY") + "  ")
	if rect.Complete {
		b.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Success).Render("complete"))
	} else {
		b.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Warning).Render("partial"))
	}
	b.WriteString("\n")

	if len(rect.Flipped) == 0 {
		b.WriteString(labelStyle().Render("no sign flips needed") + "\n")
	} else {
		t := newTable("edge", "before", "after")
		for _, e := range rect.Flipped {
			t.Row(strconv.Itoa(e), rect.Original.Edge(e).String(), rect.Graph.Edge(e).String())
		}
		b.WriteString(t.Render() + "\n")
	}
	b.WriteString(RenderAudit(rect.Graph, rect.Report))
	return b.String()
}

// RenderPolynomial shows p(λ) and its coefficients c₁..cₙ.
func RenderPolynomial(label string, p spectral.Polynomial) string {
	var b strings.Builder
	b.WriteString(titleStyle().Render(label) + "\n")
	b.WriteString(valueStyle().Render("p(λ) = "+p.String()) + "\n")
	b.WriteString(field("trace", p.Trace().String()) + "  " + field("det", p.Determinant().String()) + "\n")
	if p.Degree() == 0 {
		return b.String()
	}

	t := newTable("k", "c_k")
	for k, c := range p.Coefficients() {
		t.Row(strconv.Itoa(k+1), c.String())
	}
	b.WriteString(t.Render() + "\n")
	return b.String()
}

// RenderEigenvalues tabulates a spectrum with its summary quantities.
func RenderEigenvalues(label string, set *spectral.EigenvalueSet) string {
	var b strings.Builder
	b.WriteString(titleStyle().Render(label) + "\n")

	t := newTable("λ", "|λ|", "mult")
	for _, v := range set.Values {
		t.Row(lambda(v), fmt.Sprintf("%.6g", v.Abs()), strconv.Itoa(v.Multiplicity))
	}
	b.WriteString(t.Render() + "\n")
	b.WriteString(strings.Join([]string{
		field("ρ", fmt.Sprintf("%.6g", set.SpectralRadius())),
		field("E", fmt.Sprintf("%.6g", set.Energy())),
		field("dim", strconv.Itoa(set.Dimension())),
	}, "  ") + "\n")

	if f := set.Frequencies(); len(f) > 0 {
		parts := make([]string, len(f))
		for i, w := range f {
			parts[i] = fmt.Sprintf("%.6g", w)
		}
		b.WriteString(field("ω", strings.Join(parts, " ")) + "\n")
	}
	warn := lipgloss.NewStyle().Foreground(CurrentTheme.Warning)
	for _, w := range set.Warnings {
		b.WriteString(warn.Render("! "+w.Error()) + "\n")
	}
	return b.String()
}

func lambda(v spectral.Eigenvalue) string {
	switch {
	case v.Im == 0:
		return fmt.Sprintf("%.6g", v.Re)
	case v.Re == 0:
		return fmt.Sprintf("%.6gi", v.Im)
	default:
		return fmt.Sprintf("%.6g%+.6gi", v.Re, v.Im)
	}
}

// RenderComparison summarizes runs side by side.
func RenderComparison(results []*sim.Result) string {
	t := newTable("method", "h", "steps", "final drift", "max drift", "warnings", "elapsed")
	for _, r := range results {
		t.Row(
			string(r.Method),
			strconv.FormatFloat(r.StepSize, 'g', -1, 64),
			strconv.Itoa(r.StepsTaken),
			DriftText(r.FinalDrift),
			DriftText(r.MaxDrift),
			strconv.Itoa(r.Warnings),
			r.Elapsed.Round(time.Microsecond).String(),
		)
	}
	return t.Render() + "\n"
}
