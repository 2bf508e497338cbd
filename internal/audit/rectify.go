package audit

import (
	"fmt"

	"github.com/san-kum/phnet/internal/graph"
)

// Rectification is the result of Rectify. Original is kept for undo.
type Rectification struct {
	Graph    *graph.Graph
	Original *graph.Graph
	// Flipped holds the indices of the edges whose sign was negated.
	Flipped []int
	Report  *Report
	// Complete is true when the rectified graph is fully physical.
	Complete bool
}

// Rectify repairs every SignMismatch column by flipping the edge whose
// inertia endpoint has the higher vertex index, then audits the result
// again. Other violations are left as they are. Running Rectify on its own
// output flips nothing.
func Rectify(g *graph.Graph, r *Report) (*Rectification, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil graph", graph.ErrInvalidGraph)
	}
	if r == nil {
		return nil, fmt.Errorf("%w: nil report", ErrStaleReport)
	}
	if r.Summary.NodeCount != g.Order() || r.Summary.EdgeCount != g.Size() {
		return nil, fmt.Errorf("%w: report covers %d vertices and %d edges, graph has %d and %d",
			ErrStaleReport, r.Summary.NodeCount, r.Summary.EdgeCount, g.Order(), g.Size())
	}

	var flips []int
	for _, v := range r.Violations {
		if v.Kind != SignMismatch {
			continue
		}
		e, err := pickFlip(g, r, v)
		if err != nil {
			return nil, err
		}
		flips = append(flips, e)
	}

	next := g
	if len(flips) > 0 {
		var err error
		if next, err = g.FlipSigns(flips...); err != nil {
			return nil, err
		}
	}

	var after *Report
	var err error
	if r.supplied {
		after, err = AuditPartition(next, r.Partition)
	} else {
		after, err = Audit(next)
	}
	if err != nil {
		return nil, err
	}

	return &Rectification{
		Graph:    next,
		Original: g,
		Flipped:  flips,
		Report:   after,
		Complete: after.IsPhysical,
	}, nil
}

func pickFlip(g *graph.Graph, r *Report, v Violation) (int, error) {
	if r.Partition == nil || len(v.Edges) != 2 {
		return 0, fmt.Errorf("%w: malformed sign mismatch at %s", ErrStaleReport, v.Vertex)
	}
	best, bestP := -1, -1
	for _, e := range v.Edges {
		if e < 0 || e >= g.Size() {
			return 0, fmt.Errorf("%w: edge index %d out of range", ErrStaleReport, e)
		}
		a, b := g.Endpoints(e)
		p := a
		if r.Partition.Side(a) != graph.Inertia {
			p = b
		}
		if p > bestP {
			best, bestP = e, p
		}
	}
	return best, nil
}
