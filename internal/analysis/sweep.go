package analysis

import (
	"context"
	"fmt"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/phnet/internal/dynamo"
	"github.com/san-kum/phnet/internal/integrators"
	"github.com/san-kum/phnet/internal/matrix"
	"github.com/san-kum/phnet/internal/sim"
)

type SweepPoint struct {
	Step       float64 `json:"step"`
	Steps      int     `json:"steps"`
	MaxDrift   float64 `json:"max_drift"`
	FinalDrift float64 `json:"final_drift"`
	Warnings   int     `json:"warnings"`
}

type SweepOptions struct {
	Integrator integrators.Options
	// Workers bounds concurrent runs; zero runs them all at once.
	Workers int
}

// SweepSteps integrates x0 up to the same final time with each step size
// and reports the drift. Points come back sorted by step size.
func SweepSteps(ctx context.Context, j *matrix.IntMatrix, m integrators.Method, steps []float64, x0 dynamo.State, duration float64, opts SweepOptions) ([]SweepPoint, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("analysis: sweep duration must be positive, got %g", duration)
	}
	hs := slices.Clone(steps)
	slices.Sort(hs)
	hs = slices.Compact(hs)

	points := make([]SweepPoint, len(hs))
	g, gCtx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, h := range hs {
		g.Go(func() error {
			stepper, err := integrators.New(m, j, h, opts.Integrator)
			if err != nil {
				return fmt.Errorf("sweep h=%g: %w", h, err)
			}
			n := max(1, int(math.Ceil(duration/h)))
			res, err := sim.New(stepper).Run(gCtx, x0, sim.Config{Steps: n})
			if err != nil {
				return fmt.Errorf("sweep h=%g: %w", h, err)
			}
			points[i] = SweepPoint{
				Step:       h,
				Steps:      res.StepsTaken,
				MaxDrift:   res.MaxDrift,
				FinalDrift: res.FinalDrift,
				Warnings:   res.Warnings,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

// LargestStableStep returns the largest step whose max drift stays below
// threshold, provided every smaller step does too.
func LargestStableStep(points []SweepPoint, threshold float64) (float64, bool) {
	best, ok := 0.0, false
	for _, p := range points {
		if p.MaxDrift > threshold {
			break
		}
		best, ok = p.Step, true
	}
	return best, ok
}

// StepGrid returns n steps spaced geometrically from lo to hi.
func StepGrid(lo, hi float64, n int) []float64 {
	if n <= 1 || lo <= 0 || hi <= lo {
		return []float64{lo}
	}
	out := make([]float64, n)
	ratio := math.Pow(hi/lo, 1/float64(n-1))
	h := lo
	for i := range out {
		out[i] = h
		h *= ratio
	}
	out[n-1] = hi
	return out
}
