package physics

import (
	"github.com/san-kum/phnet/internal/dynamo"
	"github.com/san-kum/phnet/internal/graph"
	"github.com/san-kum/phnet/internal/matrix"
)

// LinearSystem is ẋ = Jx backed by the sparse edge list.
type LinearSystem struct {
	edges *matrix.EdgeList
}

func NewLinearSystem(el *matrix.EdgeList) *LinearSystem {
	return &LinearSystem{edges: el}
}

// LinearSystemFromGraph builds the system straight from a graph.
func LinearSystemFromGraph(g *graph.Graph) (*LinearSystem, error) {
	el, err := matrix.NewEdgeList(g)
	if err != nil {
		return nil, err
	}
	return NewLinearSystem(el), nil
}

func (s *LinearSystem) StateDim() int { return s.edges.Dim() }

func (s *LinearSystem) Derive(x dynamo.State, _ float64) dynamo.State {
	dx := make(dynamo.State, s.edges.Dim())
	_ = s.edges.MulVec(dx, x)
	return dx
}

// Energy implements dynamo.Hamiltonian.
func (s *LinearSystem) Energy(x dynamo.State) float64 {
	return dynamo.Energy(x)
}
