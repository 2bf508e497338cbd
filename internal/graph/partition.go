package graph

import "fmt"

// Side is the physical role of a vertex in a bipartite network.
type Side int

const (
	// Inertia vertices (p-nodes) store kinetic energy: masses, inductors.
	Inertia Side = iota
	// Stiffness vertices (q-nodes) store potential energy: springs, capacitors.
	Stiffness
)

func (s Side) String() string {
	if s == Stiffness {
		return "stiffness"
	}
	return "inertia"
}

// Partition assigns every vertex of a graph to exactly one side.
// P and Q list vertex indices in graph order.
type Partition struct {
	P     []int
	Q     []int
	sides []Side
}

// NewPartition builds a partition from one side per vertex.
func NewPartition(sides []Side) *Partition {
	p := &Partition{sides: make([]Side, len(sides))}
	copy(p.sides, sides)
	for v, s := range sides {
		if s == Stiffness {
			p.Q = append(p.Q, v)
		} else {
			p.P = append(p.P, v)
		}
	}
	return p
}

// PartitionByID assigns the listed ids to the stiffness side and every other
// vertex of g to the inertia side.
func PartitionByID(g *Graph, stiffness []string) (*Partition, error) {
	sides := make([]Side, g.Order())
	for _, id := range stiffness {
		v, ok := g.Index(id)
		if !ok {
			return nil, fmt.Errorf("%w: unknown stiffness vertex %q", ErrInvalidGraph, id)
		}
		sides[v] = Stiffness
	}
	return NewPartition(sides), nil
}

// Len is the number of vertices covered.
func (p *Partition) Len() int {
	if p == nil {
		return 0
	}
	return len(p.sides)
}

func (p *Partition) Side(v int) Side { return p.sides[v] }

// Covers reports whether the partition was built for a graph of n vertices.
func (p *Partition) Covers(n int) bool { return p != nil && len(p.sides) == n }
