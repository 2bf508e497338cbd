package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/phnet/internal/dynamo"
	"github.com/san-kum/phnet/internal/integrators"
)

// renormAbove keeps the perturbed trajectory from overflowing.
const renormAbove = 1.0

// SeparationRate estimates the exponential rate at which a trajectory
// started delta away along component i moves away from the one started at
// x0:
//
//	rate ≈ (1/t) · ln(|δx(t)| / δ)
//
// The perturbed trajectory is pulled back to distance delta whenever the
// separation exceeds 1 and the logs are accumulated.
func SeparationRate(s integrators.Stepper, x0 dynamo.State, i int, delta float64, steps int) (float64, error) {
	if i < 0 || i >= len(x0) {
		return 0, fmt.Errorf("analysis: component %d outside state of size %d", i, len(x0))
	}
	if delta <= 0 || steps <= 0 {
		return 0, fmt.Errorf("analysis: delta and steps must be positive")
	}
	xp := x0.Clone()
	xp[i] += delta
	return separation(s, x0, xp, delta, steps)
}

// SeparationSpectrum perturbs each component in turn.
func SeparationSpectrum(s integrators.Stepper, x0 dynamo.State, delta float64, steps int) ([]float64, error) {
	out := make([]float64, len(x0))
	for i := range x0 {
		rate, err := SeparationRate(s, x0, i, delta, steps)
		if err != nil {
			return nil, err
		}
		out[i] = rate
	}
	return out, nil
}

func separation(s integrators.Stepper, x0, x0p dynamo.State, d0 float64, steps int) (float64, error) {
	h := s.StepSize()
	x, xp := x0, x0p
	logSum := 0.0
	var err error

	for k := 0; k < steps; k++ {
		t := float64(k) * h
		if x, err = s.Step(x, t); err != nil {
			return 0, err
		}
		if xp, err = s.Step(xp, t); err != nil {
			return 0, err
		}

		sep := xp.Sub(x).Norm()
		if sep > renormAbove {
			logSum += math.Log(sep / d0)
			scale := d0 / sep
			for j := range xp {
				xp[j] = x[j] + (xp[j]-x[j])*scale
			}
		}
	}

	sep := xp.Sub(x).Norm()
	if sep == 0 {
		return math.Inf(-1), nil
	}
	logSum += math.Log(sep / d0)
	return logSum / (float64(steps) * h), nil
}
