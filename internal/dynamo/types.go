package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Dot(other State) float64 {
	sum := 0.0
	for i := range s {
		if i < len(other) {
			sum += s[i] * other[i]
		}
	}
	return sum
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Energy is the Hamiltonian of a uniform-parameter network, H(x) = ½‖x‖².
func Energy(x State) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return 0.5 * sum
}

// RelativeDrift returns |h - h0| / h0, or 0 when h0 is zero.
func RelativeDrift(h0, h float64) float64 {
	if h0 == 0 {
		return 0
	}
	return math.Abs(h-h0) / math.Abs(h0)
}

// System is the right-hand side of an autonomous ODE ẋ = f(x, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

// CheckDim returns ErrDimensionMismatch when len(x) != n.
func CheckDim(x State, n int) error {
	if len(x) != n {
		return fmt.Errorf("%w: state has %d entries, want %d", ErrDimensionMismatch, len(x), n)
	}
	return nil
}
