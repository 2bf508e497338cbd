// Package graph holds the immutable signed-graph value that every analysis in
// phnet consumes.
//
// A Graph is an ordered vertex list plus a list of signed edges. Edge (u, v, s)
// orients the structure matrix as J[u][v] = s and J[v][u] = -s, so (u, v, s)
// and (v, u, -s) describe the same physical element. Graphs never change after
// construction; FlipSigns returns a new snapshot.
package graph

import (
	"errors"
	"fmt"
)

// ErrInvalidGraph reports a graph that cannot describe a network: self-loops,
// unknown endpoints, bad signs or contradictory duplicate edges.
var ErrInvalidGraph = errors.New("graph: invalid graph")

// Edge is a signed connection between two vertex ids.
type Edge struct {
	U    string
	V    string
	Sign int
}

// Reversed returns the same physical edge with swapped endpoints.
func (e Edge) Reversed() Edge {
	return Edge{U: e.V, V: e.U, Sign: -e.Sign}
}

func (e Edge) String() string {
	op := "+"
	if e.Sign < 0 {
		op = "-"
	}
	return fmt.Sprintf("%s-%s(%s)", e.U, e.V, op)
}

type Graph struct {
	vertices []string
	index    map[string]int
	edges    []Edge
	ends     [][2]int
	incident [][]int
}

// New validates and builds a graph. Duplicate edges that agree on orientation
// are merged, keeping the first occurrence.
func New(vertices []string, edges []Edge) (*Graph, error) {
	g := &Graph{
		vertices: make([]string, 0, len(vertices)),
		index:    make(map[string]int, len(vertices)),
		incident: make([][]int, len(vertices)),
	}

	for _, id := range vertices {
		if id == "" {
			return nil, fmt.Errorf("%w: empty vertex id", ErrInvalidGraph)
		}
		if _, dup := g.index[id]; dup {
			return nil, fmt.Errorf("%w: duplicate vertex %q", ErrInvalidGraph, id)
		}
		g.index[id] = len(g.vertices)
		g.vertices = append(g.vertices, id)
	}

	seen := make(map[[2]int]int, len(edges))
	for _, e := range edges {
		u, okU := g.index[e.U]
		v, okV := g.index[e.V]
		switch {
		case !okU:
			return nil, fmt.Errorf("%w: edge %s references unknown vertex %q", ErrInvalidGraph, e, e.U)
		case !okV:
			return nil, fmt.Errorf("%w: edge %s references unknown vertex %q", ErrInvalidGraph, e, e.V)
		case u == v:
			return nil, fmt.Errorf("%w: self-loop on %q", ErrInvalidGraph, e.U)
		case e.Sign != 1 && e.Sign != -1:
			return nil, fmt.Errorf("%w: edge %s has sign %d, want ±1", ErrInvalidGraph, e, e.Sign)
		}

		key, sign := [2]int{u, v}, e.Sign
		if u > v {
			key, sign = [2]int{v, u}, -e.Sign
		}
		if prev, ok := seen[key]; ok {
			if prev != sign {
				return nil, fmt.Errorf("%w: contradictory duplicate edge %s", ErrInvalidGraph, e)
			}
			continue
		}
		seen[key] = sign

		idx := len(g.edges)
		g.edges = append(g.edges, e)
		g.ends = append(g.ends, [2]int{u, v})
		g.incident[u] = append(g.incident[u], idx)
		g.incident[v] = append(g.incident[v], idx)
	}

	return g, nil
}

// MustNew is New for fixed, known-good inputs; it panics on error.
func MustNew(vertices []string, edges []Edge) *Graph {
	g, err := New(vertices, edges)
	if err != nil {
		panic(err)
	}
	return g
}

// Order is the number of vertices.
func (g *Graph) Order() int { return len(g.vertices) }

// Size is the number of (merged) edges.
func (g *Graph) Size() int { return len(g.edges) }

func (g *Graph) Vertices() []string {
	out := make([]string, len(g.vertices))
	copy(out, g.vertices)
	return out
}

func (g *Graph) Vertex(i int) string { return g.vertices[i] }

func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

func (g *Graph) Edge(i int) Edge { return g.edges[i] }

// Endpoints returns the vertex indices of edge i in its stored orientation.
func (g *Graph) Endpoints(i int) (u, v int) {
	return g.ends[i][0], g.ends[i][1]
}

// Incident returns the indices of the edges touching vertex v.
func (g *Graph) Incident(v int) []int {
	out := make([]int, len(g.incident[v]))
	copy(out, g.incident[v])
	return out
}

// Degree returns the number of edges touching vertex v.
func (g *Graph) Degree(v int) int { return len(g.incident[v]) }

// Other returns the endpoint of edge e that is not v.
func (g *Graph) Other(e, v int) int {
	if g.ends[e][0] == v {
		return g.ends[e][1]
	}
	return g.ends[e][0]
}

// FlipSigns returns a new graph with the signs of the given edges negated.
// The receiver is left untouched.
func (g *Graph) FlipSigns(edges ...int) (*Graph, error) {
	out := g.Edges()
	for _, i := range edges {
		if i < 0 || i >= len(out) {
			return nil, fmt.Errorf("%w: edge index %d out of range", ErrInvalidGraph, i)
		}
		out[i].Sign = -out[i].Sign
	}
	return New(g.vertices, out)
}
