package metrics

import (
	"math"

	"github.com/san-kum/phnet/internal/dynamo"
	"github.com/san-kum/phnet/internal/integrators"
	"github.com/san-kum/phnet/internal/matrix"
	"github.com/san-kum/phnet/internal/physics"
)

// PowerResidual records the largest |Σ xᵢ·div(i)| seen. For ẋ = Jx with J
// skew this is dH/dt and must stay at rounding level regardless of method.
// A sample of the wrong dimension makes the value NaN until Reset.
type PowerResidual struct {
	edges *matrix.EdgeList
	div   dynamo.State
	max   float64
}

func NewPowerResidual(el *matrix.EdgeList) *PowerResidual {
	return &PowerResidual{edges: el, div: make(dynamo.State, el.Dim())}
}

func (p *PowerResidual) Name() string { return "power_residual" }

func (p *PowerResidual) Observe(s integrators.Sample) {
	if err := p.edges.MulVec(p.div, s.X); err != nil {
		p.max = math.NaN()
		return
	}
	p.max = math.Max(p.max, math.Abs(physics.PowerBalance(s.X, p.div)))
}

func (p *PowerResidual) Value() float64 { return p.max }
func (p *PowerResidual) Reset()         { p.max = 0 }
