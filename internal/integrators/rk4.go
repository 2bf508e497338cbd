package integrators

import (
	"fmt"

	"github.com/san-kum/phnet/internal/dynamo"
)

// RK4 is the classical fourth-order Runge–Kutta method. On ẋ = Jx its
// amplification factor has modulus below one, so energy decays slowly.
type RK4 struct {
	sys dynamo.System
	h   float64

	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4(sys dynamo.System, h float64) (*RK4, error) {
	if sys == nil {
		return nil, fmt.Errorf("%w: nil system", dynamo.ErrInvalidState)
	}
	if err := checkStep(h); err != nil {
		return nil, err
	}
	return &RK4{sys: sys, h: h}, nil
}

func (r *RK4) Method() Method    { return MethodRK4 }
func (r *RK4) StepSize() float64 { return r.h }
func (r *RK4) Dim() int          { return r.sys.StateDim() }

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(x dynamo.State, t float64) (dynamo.State, error) {
	n := r.sys.StateDim()
	if err := checkInput(x, n); err != nil {
		return nil, err
	}
	r.ensureScratch(n)
	dt := r.h

	copy(r.k1, r.sys.Derive(x, t))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	copy(r.k2, r.sys.Derive(r.scratch, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	copy(r.k3, r.sys.Derive(r.scratch, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	copy(r.k4, r.sys.Derive(r.scratch, t+dt))

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	return result, nil
}
