package matrix

import (
	"fmt"

	"github.com/san-kum/phnet/internal/graph"
)

type sparseEdge struct {
	u, v int
	s    float64
}

// EdgeList evaluates y = Jx in O(m) without materializing J.
type EdgeList struct {
	n     int
	edges []sparseEdge
}

func NewEdgeList(g *graph.Graph) (*EdgeList, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil graph", graph.ErrInvalidGraph)
	}
	el := &EdgeList{n: g.Order(), edges: make([]sparseEdge, g.Size())}
	for i := range el.edges {
		u, v := g.Endpoints(i)
		el.edges[i] = sparseEdge{u: u, v: v, s: float64(g.Edge(i).Sign)}
	}
	return el, nil
}

// EdgeListFromStructure reads the upper triangle of a skew-symmetric J.
func EdgeListFromStructure(j *IntMatrix) (*EdgeList, error) {
	if !j.IsSkewSymmetric() {
		return nil, fmt.Errorf("%w: structure matrix is not skew-symmetric", ErrDimensionMismatch)
	}
	el := &EdgeList{n: j.Rows()}
	for u := 0; u < j.Rows(); u++ {
		for v := u + 1; v < j.Cols(); v++ {
			if s := j.At(u, v); s != 0 {
				el.edges = append(el.edges, sparseEdge{u: u, v: v, s: float64(s)})
			}
		}
	}
	return el, nil
}

func (el *EdgeList) Dim() int { return el.n }

func (el *EdgeList) Len() int { return len(el.edges) }

// MulVec writes Jx into dst. dst and x must not alias.
func (el *EdgeList) MulVec(dst, x []float64) error {
	if len(x) != el.n || len(dst) != el.n {
		return fmt.Errorf("%w: got %d and %d, want %d", ErrDimensionMismatch, len(dst), len(x), el.n)
	}
	for i := range dst {
		dst[i] = 0
	}
	for _, e := range el.edges {
		dst[e.u] += e.s * x[e.v]
		dst[e.v] -= e.s * x[e.u]
	}
	return nil
}

// MulTransVec writes Jᵀx = -Jx into dst.
func (el *EdgeList) MulTransVec(dst, x []float64) error {
	if err := el.MulVec(dst, x); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = -dst[i]
	}
	return nil
}
