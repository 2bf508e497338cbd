package integrators

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/phnet/internal/dynamo"
	"github.com/san-kum/phnet/internal/graph"
	"github.com/san-kum/phnet/internal/matrix"
	"github.com/san-kum/phnet/internal/physics"
)

type Method string

const (
	MethodRodrigues   Method = "rodrigues"
	MethodCayley      Method = "cayley"
	MethodTrapezoidal Method = "trapezoidal"
	MethodRK4         Method = "rk4"
	MethodLeapfrog    Method = "leapfrog"
	MethodEuler       Method = "euler"
)

// Methods lists every supported method, structure-preserving ones first.
func Methods() []Method {
	return []Method{MethodRodrigues, MethodCayley, MethodTrapezoidal, MethodRK4, MethodLeapfrog, MethodEuler}
}

func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Methods() {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Conservative reports whether the method preserves H = ½‖x‖² up to
// round-off.
func (m Method) Conservative() bool {
	switch m {
	case MethodRodrigues, MethodCayley, MethodTrapezoidal:
		return true
	}
	return false
}

// Stepper advances a state by one fixed step.
type Stepper interface {
	Method() Method
	StepSize() float64
	Dim() int
	// Step returns the state one step after x. x is not modified.
	Step(x dynamo.State, t float64) (dynamo.State, error)
}

// Propagator evaluates the flow at an arbitrary time directly from the
// initial state, so repeated steps do not accumulate error.
type Propagator interface {
	Propagate(x0 dynamo.State, t float64) (dynamo.State, error)
}

type Options struct {
	// Sparse makes Cayley solve with the edge list and CGNR instead of a
	// dense LU factorization.
	Sparse bool
	// Tolerance is the relative residual at which CGNR stops.
	Tolerance float64
	// MaxIterations bounds CGNR; zero picks a size-based default.
	MaxIterations int
	// Partition is required by Leapfrog.
	Partition *graph.Partition
}

func DefaultOptions() Options {
	return Options{Tolerance: 1e-13}
}

// New builds the stepper for method m over the structure matrix j.
func New(m Method, j *matrix.IntMatrix, h float64, opts Options) (Stepper, error) {
	if err := checkStructure(j); err != nil {
		return nil, err
	}
	if err := checkStep(h); err != nil {
		return nil, err
	}

	switch m {
	case MethodRodrigues:
		return NewRodrigues(j, h)
	case MethodCayley:
		return NewCayley(j, h, opts)
	case MethodTrapezoidal:
		return NewTrapezoidal(j, h, opts)
	}

	el, err := matrix.EdgeListFromStructure(j)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSkew, err)
	}
	sys := physics.NewLinearSystem(el)
	switch m {
	case MethodRK4:
		return NewRK4(sys, h)
	case MethodEuler:
		return NewEuler(sys, h)
	case MethodLeapfrog:
		return NewLeapfrog(sys, j, opts.Partition, h)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, m)
}

func checkStructure(j *matrix.IntMatrix) error {
	if j == nil {
		return fmt.Errorf("%w: nil matrix", ErrNotSkew)
	}
	if !j.IsSkewSymmetric() {
		return ErrNotSkew
	}
	if j.Rows() == 0 {
		return fmt.Errorf("%w: empty structure matrix", dynamo.ErrDimensionMismatch)
	}
	return nil
}

func checkStep(h float64) error {
	if !(h > 0) || math.IsInf(h, 0) {
		return fmt.Errorf("%w: h = %g", ErrInvalidStep, h)
	}
	return nil
}

// checkInput validates a state handed to Step.
func checkInput(x dynamo.State, n int) error {
	if err := dynamo.CheckDim(x, n); err != nil {
		return err
	}
	if !x.IsValid() {
		return dynamo.ErrInvalidState
	}
	return nil
}
