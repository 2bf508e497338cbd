package integrators

import (
	"fmt"

	"github.com/san-kum/phnet/internal/dynamo"
)

// Euler is the explicit Euler method. On ẋ = Jx it multiplies the energy by
// 1 + h²ω² per mode each step, so it always drifts upwards.
type Euler struct {
	sys dynamo.System
	h   float64
}

func NewEuler(sys dynamo.System, h float64) (*Euler, error) {
	if sys == nil {
		return nil, fmt.Errorf("%w: nil system", dynamo.ErrInvalidState)
	}
	if err := checkStep(h); err != nil {
		return nil, err
	}
	return &Euler{sys: sys, h: h}, nil
}

func (e *Euler) Method() Method    { return MethodEuler }
func (e *Euler) StepSize() float64 { return e.h }
func (e *Euler) Dim() int          { return e.sys.StateDim() }

func (e *Euler) Step(x dynamo.State, t float64) (dynamo.State, error) {
	if err := checkInput(x, e.sys.StateDim()); err != nil {
		return nil, err
	}
	dx := e.sys.Derive(x, t)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + e.h*dx[i]
	}
	return result, nil
}
