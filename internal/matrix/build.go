package matrix

import (
	"fmt"

	"github.com/san-kum/phnet/internal/graph"
)

// Matrices are the square matrices derived from one graph snapshot.
type Matrices struct {
	Adjacency *IntMatrix
	Structure *IntMatrix
	Degrees   []int
}

// Build derives A, J and the degree sequence. Vertex order follows the graph.
func Build(g *graph.Graph) (*Matrices, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil graph", graph.ErrInvalidGraph)
	}

	n := g.Order()
	m := &Matrices{
		Adjacency: NewInt(n, n),
		Structure: NewInt(n, n),
		Degrees:   make([]int, n),
	}
	for i := 0; i < g.Size(); i++ {
		u, v := g.Endpoints(i)
		s := int64(g.Edge(i).Sign)
		m.Adjacency.Set(u, v, 1)
		m.Adjacency.Set(v, u, 1)
		m.Structure.Set(u, v, s)
		m.Structure.Set(v, u, -s)
	}
	for v := 0; v < n; v++ {
		m.Degrees[v] = g.Degree(v)
	}
	return m, nil
}

// Incidence is the |P|×|Q| coupling matrix of a bipartite network. Entry
// (i, j) is the sign of the edge between Rows[i] and Cols[j] read in the
// P→Q direction, or zero.
type Incidence struct {
	Mat *IntMatrix
	// Rows and Cols hold graph vertex indices.
	Rows []int
	Cols []int
	// ColumnEdges lists the graph edge indices touching each column.
	ColumnEdges [][]int
}

// BuildIncidence projects the graph onto the partition.
func BuildIncidence(g *graph.Graph, p *graph.Partition) (*Incidence, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil graph", graph.ErrInvalidGraph)
	}
	if !p.Covers(g.Order()) {
		return nil, fmt.Errorf("%w: partition covers %d vertices, graph has %d", ErrInvalidPartition, p.Len(), g.Order())
	}

	row := make(map[int]int, len(p.P))
	for i, v := range p.P {
		row[v] = i
	}
	col := make(map[int]int, len(p.Q))
	for j, v := range p.Q {
		col[v] = j
	}

	inc := &Incidence{
		Mat:         NewInt(len(p.P), len(p.Q)),
		Rows:        append([]int(nil), p.P...),
		Cols:        append([]int(nil), p.Q...),
		ColumnEdges: make([][]int, len(p.Q)),
	}
	for e := 0; e < g.Size(); e++ {
		u, v := g.Endpoints(e)
		s := int64(g.Edge(e).Sign)
		su, sv := p.Side(u), p.Side(v)
		if su == sv {
			return nil, fmt.Errorf("%w: edge %s joins two %s vertices", ErrNotBipartite, g.Edge(e), su)
		}
		if su == graph.Stiffness {
			u, v, s = v, u, -s
		}
		i, j := row[u], col[v]
		inc.Mat.Set(i, j, s)
		inc.ColumnEdges[j] = append(inc.ColumnEdges[j], e)
	}
	return inc, nil
}

// ColumnNonzeros returns the nonzero entries of column j in row order.
func (b *Incidence) ColumnNonzeros(j int) []int64 {
	var out []int64
	for i := 0; i < b.Mat.Rows(); i++ {
		if v := b.Mat.At(i, j); v != 0 {
			out = append(out, v)
		}
	}
	return out
}
