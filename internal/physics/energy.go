package physics

import (
	"fmt"

	"github.com/san-kum/phnet/internal/dynamo"
	"github.com/san-kum/phnet/internal/graph"
	"github.com/san-kum/phnet/internal/matrix"
)

// Energy splits H(x) by vertex role.
type Energy struct {
	Kinetic   float64 `json:"kinetic"`
	Potential float64 `json:"potential"`
	Total     float64 `json:"total"`
}

// Hamiltonian computes kinetic = ½Σ_{i∈P} xᵢ² and potential = ½Σ_{i∈Q} xᵢ².
// The partition is required; without one the split has no meaning.
func Hamiltonian(x dynamo.State, p *graph.Partition) (Energy, error) {
	if p == nil {
		return Energy{}, fmt.Errorf("%w: hamiltonian needs a partition", matrix.ErrInvalidPartition)
	}
	if err := dynamo.CheckDim(x, p.Len()); err != nil {
		return Energy{}, err
	}

	var e Energy
	for _, i := range p.P {
		e.Kinetic += 0.5 * x[i] * x[i]
	}
	for _, i := range p.Q {
		e.Potential += 0.5 * x[i] * x[i]
	}
	e.Total = e.Kinetic + e.Potential
	return e, nil
}
