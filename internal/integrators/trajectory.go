package integrators

import (
	"fmt"
	"iter"

	"github.com/san-kum/phnet/internal/dynamo"
)

// DriftWarningThreshold is the relative energy drift above which a sample is
// flagged. For Cayley and Trapezoidal it signals a step size worth
// revisiting, not necessarily a defect.
const DriftWarningThreshold = 1e-3

// Sample is one point of a trajectory. T is always Step·h.
type Sample struct {
	Step    int          `json:"step"`
	T       float64      `json:"t"`
	X       dynamo.State `json:"x"`
	Energy  float64      `json:"energy"`
	Drift   float64      `json:"drift"`
	Warning bool         `json:"warning"`
}

// Trajectory is a lazy, unbounded, restartable sequence of samples of
// ẋ = Jx. It holds only the initial and current state; stopping is simply
// not asking for the next sample.
type Trajectory struct {
	stepper Stepper
	x0      dynamo.State
	h0      float64
	cur     Sample
}

func NewTrajectory(s Stepper, x0 dynamo.State) (*Trajectory, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil stepper", ErrUnknownMethod)
	}
	if err := checkInput(x0, s.Dim()); err != nil {
		return nil, err
	}
	tr := &Trajectory{stepper: s, x0: x0.Clone(), h0: dynamo.Energy(x0)}
	tr.Reset()
	return tr, nil
}

func (tr *Trajectory) Method() Method { return tr.stepper.Method() }

// Reset rewinds to the initial state.
func (tr *Trajectory) Reset() {
	tr.cur = tr.sample(0, tr.x0.Clone())
}

// Current returns the latest sample without advancing.
func (tr *Trajectory) Current() Sample {
	s := tr.cur
	s.X = s.X.Clone()
	return s
}

// Next advances one step. On error the trajectory is left unchanged, so the
// caller may retry or switch method.
func (tr *Trajectory) Next() (Sample, error) {
	k := tr.cur.Step + 1
	var x dynamo.State
	var err error
	if p, ok := tr.stepper.(Propagator); ok {
		x, err = p.Propagate(tr.x0, float64(k)*tr.stepper.StepSize())
	} else {
		x, err = tr.stepper.Step(tr.cur.X, tr.cur.T)
	}
	if err != nil {
		return Sample{}, &dynamo.SimulationError{Step: k, Time: float64(k) * tr.stepper.StepSize(), State: tr.cur.X.Clone(), Wrapped: err}
	}

	tr.cur = tr.sample(k, x)
	return tr.Current(), nil
}

// All yields the current sample and then every following one until the
// consumer stops or a step fails; a failure is yielded once as the error.
func (tr *Trajectory) All() iter.Seq2[Sample, error] {
	return func(yield func(Sample, error) bool) {
		if !yield(tr.Current(), nil) {
			return
		}
		for {
			s, err := tr.Next()
			if err != nil {
				yield(Sample{}, err)
				return
			}
			if !yield(s, nil) {
				return
			}
		}
	}
}

func (tr *Trajectory) sample(k int, x dynamo.State) Sample {
	h := dynamo.Energy(x)
	drift := dynamo.RelativeDrift(tr.h0, h)
	return Sample{
		Step:    k,
		T:       float64(k) * tr.stepper.StepSize(),
		X:       x,
		Energy:  h,
		Drift:   drift,
		Warning: drift > DriftWarningThreshold,
	}
}
