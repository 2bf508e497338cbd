package analysis

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/phnet/internal/dynamo"
	"github.com/san-kum/phnet/internal/integrators"
	"github.com/san-kum/phnet/internal/matrix"
	"github.com/san-kum/phnet/internal/sim"
)

// single edge: ẋ₀ = x₁, ẋ₁ = -x₀, ω = 1
var edgeJ = matrix.MustIntFromRows([][]int64{{0, 1}, {-1, 0}})

func stepper(t *testing.T, m integrators.Method, h float64) integrators.Stepper {
	t.Helper()
	s, err := integrators.New(m, edgeJ, h, integrators.DefaultOptions())
	require.NoError(t, err)
	return s
}

func samples(t *testing.T, m integrators.Method, h float64, steps int) []integrators.Sample {
	t.Helper()
	res, err := sim.New(stepper(t, m, h)).Run(context.Background(), dynamo.State{1, 0}, sim.Config{Steps: steps, Record: 1})
	require.NoError(t, err)
	return res.Samples
}

func TestFFT(t *testing.T) {
	_, err := FFT([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrNotPowerOfTwo)

	out, err := FFT([]float64{1, 0, 0, 0})
	require.NoError(t, err)
	for _, c := range out {
		assert.InDelta(t, 1.0, real(c), 1e-15)
		assert.InDelta(t, 0.0, imag(c), 1e-15)
	}
}

func TestDominantFrequencyMatchesEdgeFrequency(t *testing.T) {
	// 16 full periods in 1024 samples puts ω = 1 on a bin
	h := 2 * math.Pi * 16 / 1024
	ss := samples(t, integrators.MethodRodrigues, h, 1023)
	require.Len(t, ss, 1024)

	series := make([]float64, len(ss))
	for i, s := range ss {
		series[i] = s.X[0]
	}
	omega, err := DominantFrequency(series, h)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, omega, 1e-9)

	_, err = DominantFrequency(series[:3], h)
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestSeparationRate(t *testing.T) {
	x0 := dynamo.State{1, 0}

	rate, err := SeparationRate(stepper(t, integrators.MethodRodrigues, 0.1), x0, 0, 1e-6, 1000)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, rate, 1e-8)

	rate, err = SeparationRate(stepper(t, integrators.MethodCayley, 0.1), x0, 1, 1e-6, 1000)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, rate, 1e-8)

	// ‖I + hJ‖ = √(1 + h²) on every vector
	rate, err = SeparationRate(stepper(t, integrators.MethodEuler, 0.1), x0, 0, 1e-6, 1000)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(1.01)/0.2, rate, 1e-6)

	spectrum, err := SeparationSpectrum(stepper(t, integrators.MethodEuler, 0.1), x0, 1e-6, 1000)
	require.NoError(t, err)
	require.Len(t, spectrum, 2)
	assert.InDelta(t, spectrum[0], spectrum[1], 1e-6)

	_, err = SeparationRate(stepper(t, integrators.MethodEuler, 0.1), x0, 2, 1e-6, 10)
	assert.Error(t, err)
	_, err = SeparationRate(stepper(t, integrators.MethodEuler, 0.1), x0, 0, 0, 10)
	assert.Error(t, err)
}

func TestPhasePortrait(t *testing.T) {
	ss := samples(t, integrators.MethodRodrigues, 0.05, 200)

	p, err := NewPhasePortrait(ss, 0, 1)
	require.NoError(t, err)
	require.Len(t, p.Points, len(ss))
	for _, pt := range p.Points {
		assert.InDelta(t, 1.0, math.Hypot(pt.X, pt.Y), 1e-12)
	}

	art := p.ASCII(40, 12)
	lines := strings.Split(strings.TrimSuffix(art, "\n"), "\n")
	assert.Len(t, lines, 12)
	assert.Contains(t, art, "•")
	assert.Contains(t, art, "│")
	assert.Contains(t, art, "─")

	_, err = NewPhasePortrait(ss, 0, 2)
	assert.Error(t, err)
	_, err = NewPhasePortrait(nil, 0, 1)
	assert.ErrorIs(t, err, ErrTooShort)
	assert.Empty(t, (*PhasePortrait)(nil).ASCII(10, 10))
}

func TestSweepSteps(t *testing.T) {
	x0 := dynamo.State{1, 0}
	points, err := SweepSteps(context.Background(), edgeJ, integrators.MethodEuler,
		[]float64{0.2, 0.01, 0.05, 0.01}, x0, 1, SweepOptions{Workers: 2})
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, 0.01, points[0].Step)
	assert.Equal(t, 0.2, points[2].Step)
	assert.Less(t, points[0].MaxDrift, points[1].MaxDrift)
	assert.Less(t, points[1].MaxDrift, points[2].MaxDrift)
	// (1 + h²)^(T/h) - 1 with h = 0.2, T = 1
	assert.InDelta(t, math.Pow(1.04, 5)-1, points[2].FinalDrift, 1e-9)

	h, ok := LargestStableStep(points, 0.02)
	assert.True(t, ok)
	assert.Equal(t, 0.01, h)
	_, ok = LargestStableStep(points, 1e-6)
	assert.False(t, ok)

	exact, err := SweepSteps(context.Background(), edgeJ, integrators.MethodRodrigues,
		StepGrid(0.01, 1, 5), x0, 10, SweepOptions{})
	require.NoError(t, err)
	h, ok = LargestStableStep(exact, 1e-10)
	assert.True(t, ok)
	assert.Equal(t, 1.0, h)

	_, err = SweepSteps(context.Background(), edgeJ, integrators.MethodEuler, []float64{0.1}, x0, 0, SweepOptions{})
	assert.Error(t, err)
	_, err = SweepSteps(context.Background(), edgeJ, integrators.MethodEuler, []float64{-0.1}, x0, 1, SweepOptions{})
	assert.Error(t, err)
}

func TestStepGrid(t *testing.T) {
	grid := StepGrid(0.01, 1, 3)
	require.Len(t, grid, 3)
	assert.InDelta(t, 0.01, grid[0], 1e-15)
	assert.InDelta(t, 0.1, grid[1], 1e-12)
	assert.Equal(t, 1.0, grid[2])
	assert.Equal(t, []float64{0.5}, StepGrid(0.5, 0.1, 4))
}
