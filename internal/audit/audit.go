package audit

import (
	"fmt"

	"github.com/san-kum/phnet/internal/graph"
	"github.com/san-kum/phnet/internal/matrix"
)

// Audit 2-colors the graph breadth-first, one component at a time in vertex
// order, and validates the incidence columns of the resulting partition.
// Color 0 is the inertia side. Violations are returned as report data; the
// error is non-nil only for a nil graph.
func Audit(g *graph.Graph) (*Report, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil graph", graph.ErrInvalidGraph)
	}

	r := newReport(g)
	sides, conflict := twoColor(g)
	if conflict >= 0 {
		u, v := g.Endpoints(conflict)
		r.Violations = append(r.Violations, Violation{
			Kind:    NotBipartite,
			Vertex:  g.Vertex(u),
			Edges:   []int{conflict},
			Message: fmt.Sprintf("edge %s closes an odd cycle between %s and %s", g.Edge(conflict), g.Vertex(u), g.Vertex(v)),
		})
		r.finish()
		return r, nil
	}

	p := graph.NewPartition(sides)
	if err := r.validate(g, p); err != nil {
		return nil, err
	}
	return r, nil
}

// AuditPartition validates a caller-supplied role assignment instead of
// deriving one. Every edge joining two vertices of the same side is reported
// as NotBipartite; stiffness vertices without edges surface as Isolated.
func AuditPartition(g *graph.Graph, p *graph.Partition) (*Report, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil graph", graph.ErrInvalidGraph)
	}
	if !p.Covers(g.Order()) {
		return nil, fmt.Errorf("%w: partition covers %d vertices, graph has %d", matrix.ErrInvalidPartition, p.Len(), g.Order())
	}

	r := newReport(g)
	r.supplied = true
	r.Partition = p
	r.Summary.InertiaCount = len(p.P)
	r.Summary.StiffnessCount = len(p.Q)

	for e := 0; e < g.Size(); e++ {
		u, v := g.Endpoints(e)
		if p.Side(u) != p.Side(v) {
			continue
		}
		r.Violations = append(r.Violations, Violation{
			Kind:    NotBipartite,
			Vertex:  g.Vertex(u),
			Edges:   []int{e},
			Message: fmt.Sprintf("edge %s joins two %s vertices", g.Edge(e), p.Side(u)),
		})
	}
	if len(r.Violations) > 0 {
		r.finish()
		return r, nil
	}

	if err := r.validate(g, p); err != nil {
		return nil, err
	}
	return r, nil
}

func newReport(g *graph.Graph) *Report {
	return &Report{
		Violations: []Violation{},
		Grounded:   []string{},
		Summary: Summary{
			NodeCount:     g.Order(),
			EdgeCount:     g.Size(),
			StateSpaceDim: g.Order(),
		},
	}
}

// twoColor returns one side per vertex, or the index of the first edge found
// between two vertices of the same color.
func twoColor(g *graph.Graph) ([]graph.Side, int) {
	n := g.Order()
	color := make([]int, n)
	for i := range color {
		color[i] = -1
	}

	queue := make([]int, 0, n)
	for start := 0; start < n; start++ {
		if color[start] >= 0 {
			continue
		}
		color[start] = 0
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, e := range g.Incident(u) {
				v := g.Other(e, u)
				switch color[v] {
				case -1:
					color[v] = 1 - color[u]
					queue = append(queue, v)
				case color[u]:
					return nil, e
				}
			}
		}
	}

	sides := make([]graph.Side, n)
	for v, c := range color {
		if c == 1 {
			sides[v] = graph.Stiffness
		}
	}
	return sides, -1
}

func (r *Report) validate(g *graph.Graph, p *graph.Partition) error {
	inc, err := matrix.BuildIncidence(g, p)
	if err != nil {
		return err
	}
	r.Partition = p
	r.Incidence = inc
	r.Summary.InertiaCount = len(p.P)
	r.Summary.StiffnessCount = len(p.Q)

	for j, q := range inc.Cols {
		id := g.Vertex(q)
		edges := inc.ColumnEdges[j]
		nz := inc.ColumnNonzeros(j)
		switch len(nz) {
		case 0:
			r.Violations = append(r.Violations, Violation{
				Kind:    Isolated,
				Vertex:  id,
				Edges:   []int{},
				Message: fmt.Sprintf("stiffness vertex %s has no connections", id),
			})
		case 1:
			r.Grounded = append(r.Grounded, id)
			r.Summary.GroundedCount++
		case 2:
			if nz[0]+nz[1] != 0 {
				r.Violations = append(r.Violations, Violation{
					Kind:    SignMismatch,
					Vertex:  id,
					Edges:   append([]int(nil), edges...),
					Message: fmt.Sprintf("stiffness vertex %s couples both neighbours with sign %+d", id, nz[0]),
				})
			}
		default:
			r.Violations = append(r.Violations, Violation{
				Kind:    OverConnected,
				Vertex:  id,
				Edges:   append([]int(nil), edges...),
				Message: fmt.Sprintf("stiffness vertex %s couples %d inertia vertices", id, len(nz)),
			})
		}
	}
	r.finish()
	return nil
}
