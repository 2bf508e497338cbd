package integrators

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phnet/internal/dynamo"
	"github.com/san-kum/phnet/internal/graph"
	"github.com/san-kum/phnet/internal/matrix"
	"github.com/san-kum/phnet/internal/spectral"
)

func pathGraph(n int) *graph.Graph {
	vs := make([]string, n)
	for i := range vs {
		vs[i] = fmt.Sprintf("v%d", i)
	}
	var es []graph.Edge
	for i := 0; i+1 < n; i++ {
		es = append(es, graph.Edge{U: vs[i], V: vs[i+1], Sign: 1})
	}
	return graph.MustNew(vs, es)
}

func randomGraph(rng *rand.Rand, n int) *graph.Graph {
	vs := make([]string, n)
	for i := range vs {
		vs[i] = fmt.Sprintf("v%d", i)
	}
	var es []graph.Edge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Intn(2) == 0 {
				es = append(es, graph.Edge{U: vs[i], V: vs[j], Sign: 1 - 2*rng.Intn(2)})
			}
		}
	}
	return graph.MustNew(vs, es)
}

func structure(t testing.TB, g *graph.Graph) *matrix.IntMatrix {
	t.Helper()
	m, err := matrix.Build(g)
	require.NoError(t, err)
	return m.Structure
}

func randomState(rng *rand.Rand, n int) dynamo.State {
	x := make(dynamo.State, n)
	for i := range x {
		x[i] = rng.NormFloat64()
	}
	return x
}

func alternating(n int) *graph.Partition {
	sides := make([]graph.Side, n)
	for i := 1; i < n; i += 2 {
		sides[i] = graph.Stiffness
	}
	return graph.NewPartition(sides)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" Cayley ")
	require.NoError(t, err)
	assert.Equal(t, MethodCayley, m)
	assert.True(t, m.Conservative())
	assert.False(t, MethodRK4.Conservative())

	_, err = ParseMethod("midpoint")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestNew_Validation(t *testing.T) {
	j := structure(t, pathGraph(3))

	_, err := New(MethodCayley, matrix.MustIntFromRows([][]int64{{0, 1}, {1, 0}}), 0.1, DefaultOptions())
	assert.ErrorIs(t, err, ErrNotSkew)

	for _, h := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
		_, err = New(MethodRodrigues, j, h, DefaultOptions())
		assert.ErrorIs(t, err, ErrInvalidStep, "h=%g", h)
	}

	_, err = New(Method("midpoint"), j, 0.1, DefaultOptions())
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = New(MethodRodrigues, matrix.NewInt(0, 0), 0.1, DefaultOptions())
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)

	for _, m := range Methods() {
		opts := DefaultOptions()
		opts.Partition = alternating(3)
		s, err := New(m, j, 0.1, opts)
		require.NoError(t, err, m)
		assert.Equal(t, m, s.Method())
		assert.Equal(t, 3, s.Dim())
		assert.Equal(t, 0.1, s.StepSize())
	}
}

func TestRodrigues_SingleEdgeMatchesAnalytic(t *testing.T) {
	j := structure(t, pathGraph(2))
	r, err := NewRodrigues(j, 0.25)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1}, r.Frequencies(), 1e-14)

	// ẋ₀ = x₁, ẋ₁ = -x₀
	x0 := dynamo.State{0.3, -1.2}
	for _, tt := range []float64{0.25, 1, 7.5} {
		x, err := r.Propagate(x0, tt)
		require.NoError(t, err)
		c, s := math.Cos(tt), math.Sin(tt)
		assert.InDelta(t, c*x0[0]+s*x0[1], x[0], 1e-13)
		assert.InDelta(t, -s*x0[0]+c*x0[1], x[1], 1e-13)
	}
}

func TestRodrigues_ExpMatrixMatchesTaylorSeries(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for _, g := range []*graph.Graph{pathGraph(2), pathGraph(4), randomGraph(rng, 6)} {
		j := structure(t, g)
		r, err := NewRodrigues(j, 0.3)
		require.NoError(t, err)

		want := taylorExp(j.Dense(), 0.3)
		got := r.ExpMatrix(0.3)
		assert.True(t, mat.EqualApprox(want, got, 1e-12), "\n%v\n%v", mat.Formatted(want), mat.Formatted(got))

		var eet mat.Dense
		eet.Mul(got, got.T())
		n, _ := eet.Dims()
		assert.True(t, mat.EqualApprox(&eet, identity(n), 1e-12))
	}
}

func taylorExp(j *mat.Dense, h float64) *mat.Dense {
	n, _ := j.Dims()
	sum := identity(n)
	term := identity(n)
	for k := 1; k < 40; k++ {
		var next mat.Dense
		next.Mul(term, j)
		next.Scale(h/float64(k), &next)
		term = &next
		sum.Add(sum, term)
	}
	return sum
}

func identity(n int) *mat.Dense {
	id := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		id.Set(i, i, 1)
	}
	return id
}

func TestRodrigues_FrequenciesMatchSpectrum(t *testing.T) {
	j := structure(t, pathGraph(4))
	r, err := NewRodrigues(j, 0.1)
	require.NoError(t, err)

	set, err := spectral.Eigenvalues(j, spectral.DefaultOptions())
	require.NoError(t, err)

	want := set.Frequencies()
	got := r.Frequencies()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[len(want)-1-i], got[i], 1e-12)
	}
}

func TestRodrigues_NormPreservedOverLongRuns(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	graphs := []*graph.Graph{pathGraph(5), randomGraph(rng, 6), randomGraph(rng, 9)}
	for gi, g := range graphs {
		for _, h := range []float64{0.01, 0.1, 0.5} {
			j := structure(t, g)
			r, err := NewRodrigues(j, h)
			require.NoError(t, err)

			x0 := randomState(rng, j.Rows())
			tr, err := NewTrajectory(r, x0)
			require.NoError(t, err)

			n0 := x0.Norm()
			worst := 0.0
			for k := 0; k < 10000; k++ {
				s, err := tr.Next()
				require.NoError(t, err)
				worst = math.Max(worst, math.Abs(s.X.Norm()-n0))
			}
			assert.Less(t, worst, 1e-12, "graph %d h=%g", gi, h)
			assert.False(t, tr.Current().Warning)
		}
	}
}

func TestCayley_TrapezoidalIsIdentical(t *testing.T) {
	j := structure(t, pathGraph(5))
	c, err := NewCayley(j, 0.1, DefaultOptions())
	require.NoError(t, err)
	tz, err := NewTrapezoidal(j, 0.1, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, MethodTrapezoidal, tz.Method())

	x := dynamo.State{1, 0, -1, 0.5, 2}
	a, err := c.Step(x, 0)
	require.NoError(t, err)
	b, err := tz.Step(x, 0)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCayley_DriftBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	j := structure(t, randomGraph(rng, 8))
	for _, sparse := range []bool{false, true} {
		opts := DefaultOptions()
		opts.Sparse = sparse
		c, err := NewCayley(j, 0.1, opts)
		require.NoError(t, err)
		assert.Equal(t, sparse, c.Sparse())

		tr, err := NewTrajectory(c, randomState(rng, 8))
		require.NoError(t, err)

		var drifts []float64
		for k := 0; k < 10000; k++ {
			s, err := tr.Next()
			require.NoError(t, err)
			drifts = append(drifts, s.Drift)
		}
		assert.Less(t, maxOf(drifts), 1e-8, "sparse=%v", sparse)
		assert.False(t, strictlyIncreasing(drifts))
	}
}

func TestCayley_SparseMatchesDense(t *testing.T) {
	j := structure(t, pathGraph(12))
	dense, err := NewCayley(j, 0.2, DefaultOptions())
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.Sparse = true
	sparse, err := NewCayley(j, 0.2, opts)
	require.NoError(t, err)

	x := randomState(rand.New(rand.NewSource(9)), 12)
	xd, xs := x, x
	for k := 0; k < 100; k++ {
		xd, err = dense.Step(xd, 0)
		require.NoError(t, err)
		xs, err = sparse.Step(xs, 0)
		require.NoError(t, err)
	}
	assert.InDeltaSlice(t, xd, xs, 1e-10)
}

func TestCayley_SecondOrderAgainstRodrigues(t *testing.T) {
	j := structure(t, pathGraph(4))
	x0 := dynamo.State{1, 0.5, -0.25, 0.75}
	const T = 10.0

	errAt := func(h float64) float64 {
		c, err := NewCayley(j, h, DefaultOptions())
		require.NoError(t, err)
		r, err := NewRodrigues(j, h)
		require.NoError(t, err)

		steps := int(math.Round(T / h))
		x := x0
		for k := 0; k < steps; k++ {
			x, err = c.Step(x, 0)
			require.NoError(t, err)
		}
		exact, err := r.Propagate(x0, T)
		require.NoError(t, err)
		return x.Sub(exact).Norm()
	}

	coarse, fine := errAt(0.1), errAt(0.05)
	ratio := coarse / fine
	assert.Greater(t, ratio, 3.5)
	assert.Less(t, ratio, 4.5)
	assert.Less(t, coarse, 0.1)
}

func TestCayley_SingularSolve(t *testing.T) {
	j := structure(t, pathGraph(3))
	_, err := NewCayley(j, 1e20, DefaultOptions())
	assert.ErrorIs(t, err, ErrSingularSolve)

	opts := DefaultOptions()
	opts.Sparse = true
	_, err = NewCayley(j, 1e20, opts)
	assert.ErrorIs(t, err, ErrSingularSolve)
}

func TestCayley_SparseIterationLimit(t *testing.T) {
	j := structure(t, pathGraph(6))
	opts := Options{Sparse: true, Tolerance: 1e-300, MaxIterations: 1}
	c, err := NewCayley(j, 0.5, opts)
	require.NoError(t, err)

	_, err = c.Step(dynamo.State{1, 2, 3, 4, 5, 6}, 0)
	assert.ErrorIs(t, err, ErrSingularSolve)
}

func TestRK4_EnergyDecays(t *testing.T) {
	s, err := New(MethodRK4, structure(t, pathGraph(4)), 0.1, DefaultOptions())
	require.NoError(t, err)
	tr, err := NewTrajectory(s, dynamo.State{1, 0, 0, 0})
	require.NoError(t, err)

	prev := tr.Current().Energy
	for k := 0; k < 1000; k++ {
		smp, err := tr.Next()
		require.NoError(t, err)
		assert.LessOrEqual(t, smp.Energy, prev)
		prev = smp.Energy
	}
	assert.Less(t, prev, 0.5)
	assert.Greater(t, tr.Current().Drift, 0.0)
}

func TestEuler_EnergyGrowsAndWarns(t *testing.T) {
	s, err := New(MethodEuler, structure(t, pathGraph(3)), 0.1, DefaultOptions())
	require.NoError(t, err)
	tr, err := NewTrajectory(s, dynamo.State{1, 0, 0})
	require.NoError(t, err)

	var last Sample
	for k := 0; k < 200; k++ {
		last, err = tr.Next()
		require.NoError(t, err)
	}
	assert.Greater(t, last.Energy, 0.5)
	assert.True(t, last.Warning)
}

func TestLeapfrog_BoundedOscillation(t *testing.T) {
	j := structure(t, pathGraph(6))
	opts := DefaultOptions()
	opts.Partition = alternating(6)
	s, err := New(MethodLeapfrog, j, 0.1, opts)
	require.NoError(t, err)
	tr, err := NewTrajectory(s, dynamo.State{1, 0, 0, 0, 0, 0})
	require.NoError(t, err)

	early, late := 0.0, 0.0
	for k := 0; k < 10000; k++ {
		smp, err := tr.Next()
		require.NoError(t, err)
		if k < 1000 {
			early = math.Max(early, smp.Drift)
		} else if k >= 9000 {
			late = math.Max(late, smp.Drift)
		}
	}
	assert.Less(t, early, 0.02)
	assert.Less(t, late, 0.02)
}

func TestLeapfrog_NeedsBipartitePartition(t *testing.T) {
	tri := graph.MustNew([]string{"a", "b", "c"}, []graph.Edge{
		{U: "a", V: "b", Sign: 1}, {U: "b", V: "c", Sign: 1}, {U: "c", V: "a", Sign: 1},
	})
	opts := DefaultOptions()
	opts.Partition = alternating(3)
	_, err := New(MethodLeapfrog, structure(t, tri), 0.1, opts)
	assert.ErrorIs(t, err, matrix.ErrNotBipartite)

	_, err = New(MethodLeapfrog, structure(t, pathGraph(3)), 0.1, DefaultOptions())
	assert.ErrorIs(t, err, matrix.ErrInvalidPartition)
}

type flakyStepper struct {
	calls  int
	failAt int
}

func (f *flakyStepper) Method() Method    { return MethodEuler }
func (f *flakyStepper) StepSize() float64 { return 0.5 }
func (f *flakyStepper) Dim() int          { return 1 }
func (f *flakyStepper) Step(x dynamo.State, _ float64) (dynamo.State, error) {
	f.calls++
	if f.calls == f.failAt {
		return nil, ErrSingularSolve
	}
	return dynamo.State{x[0] + 1}, nil
}

func TestTrajectory_PullSemantics(t *testing.T) {
	tr, err := NewTrajectory(&flakyStepper{}, dynamo.State{1})
	require.NoError(t, err)

	cur := tr.Current()
	assert.Equal(t, 0, cur.Step)
	assert.Equal(t, 0.0, cur.T)
	assert.Equal(t, 0.5, cur.Energy)

	for k := 1; k <= 3; k++ {
		s, err := tr.Next()
		require.NoError(t, err)
		assert.Equal(t, k, s.Step)
		assert.Equal(t, float64(k)*0.5, s.T)
		assert.Equal(t, float64(1+k), s.X[0])
	}

	s := tr.Current()
	s.X[0] = 100
	assert.Equal(t, 4.0, tr.Current().X[0], "Current returns a copy")

	tr.Reset()
	assert.Equal(t, 0, tr.Current().Step)
	assert.Equal(t, dynamo.State{1}, tr.Current().X)
}

func TestTrajectory_FailedStepLeavesStateUntouched(t *testing.T) {
	tr, err := NewTrajectory(&flakyStepper{failAt: 3}, dynamo.State{0})
	require.NoError(t, err)
	_, _ = tr.Next()
	_, _ = tr.Next()

	_, err = tr.Next()
	require.ErrorIs(t, err, ErrSingularSolve)
	var simErr *dynamo.SimulationError
	require.True(t, errors.As(err, &simErr))
	assert.Equal(t, 3, simErr.Step)

	assert.Equal(t, 2, tr.Current().Step)
	assert.Equal(t, dynamo.State{2}, tr.Current().X)

	s, err := tr.Next()
	require.NoError(t, err)
	assert.Equal(t, 3, s.Step)
}

func TestTrajectory_All(t *testing.T) {
	tr, err := NewTrajectory(&flakyStepper{}, dynamo.State{0})
	require.NoError(t, err)

	var steps []int
	for s, err := range tr.All() {
		require.NoError(t, err)
		steps = append(steps, s.Step)
		if s.Step == 4 {
			break
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, steps)

	tr, err = NewTrajectory(&flakyStepper{failAt: 2}, dynamo.State{0})
	require.NoError(t, err)
	var errs int
	for _, err := range tr.All() {
		if err != nil {
			errs++
		}
	}
	assert.Equal(t, 1, errs)
}

func TestTrajectory_RejectsBadInitialState(t *testing.T) {
	s, err := NewRodrigues(structure(t, pathGraph(2)), 0.1)
	require.NoError(t, err)

	_, err = NewTrajectory(s, dynamo.State{1})
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
	_, err = NewTrajectory(s, dynamo.State{math.NaN(), 0})
	assert.ErrorIs(t, err, dynamo.ErrInvalidState)
}

func maxOf(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		m = math.Max(m, x)
	}
	return m
}

func strictlyIncreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return false
		}
	}
	return true
}
