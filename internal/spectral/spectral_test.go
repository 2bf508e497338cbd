package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/phnet/internal/graph"
	"github.com/san-kum/phnet/internal/matrix"
)

func path(n int) *graph.Graph {
	vs := make([]string, n)
	for i := range vs {
		vs[i] = string(rune('a' + i))
	}
	var es []graph.Edge
	for i := 0; i+1 < n; i++ {
		es = append(es, graph.Edge{U: vs[i], V: vs[i+1], Sign: 1})
	}
	return graph.MustNew(vs, es)
}

func complete(n int) *graph.Graph {
	vs := make([]string, n)
	for i := range vs {
		vs[i] = string(rune('a' + i))
	}
	var es []graph.Edge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			es = append(es, graph.Edge{U: vs[i], V: vs[j], Sign: 1})
		}
	}
	return graph.MustNew(vs, es)
}

func build(t *testing.T, g *graph.Graph) *matrix.Matrices {
	t.Helper()
	m, err := matrix.Build(g)
	require.NoError(t, err)
	return m
}

// leibniz computes det(xI - A) by permutation expansion.
func leibniz(a *matrix.IntMatrix, x int64) int64 {
	n := a.Rows()
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	entry := func(i, j int) int64 {
		v := -a.At(i, j)
		if i == j {
			v += x
		}
		return v
	}
	var total int64
	var rec func(k int, sign int64)
	rec = func(k int, sign int64) {
		if k == n {
			prod := sign
			for i := 0; i < n; i++ {
				prod *= entry(i, perm[i])
			}
			total += prod
			return
		}
		for i := k; i < n; i++ {
			perm[k], perm[i] = perm[i], perm[k]
			s := sign
			if i != k {
				s = -s
			}
			rec(k+1, s)
			perm[k], perm[i] = perm[i], perm[k]
		}
	}
	rec(0, 1)
	return total
}

func randomMatrix(rng *rand.Rand, n int, kind Symmetry) *matrix.IntMatrix {
	m := matrix.NewInt(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			switch kind {
			case SymmetrySymmetric:
				if j >= i {
					v := int64(rng.Intn(5) - 2)
					m.Set(i, j, v)
					m.Set(j, i, v)
				}
			case SymmetrySkew:
				if j > i {
					v := int64(rng.Intn(3) - 1)
					m.Set(i, j, v)
					m.Set(j, i, -v)
				}
			default:
				m.Set(i, j, int64(rng.Intn(7)-3))
			}
		}
	}
	return m
}

func TestCharacteristicPolynomial_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 1; n <= 6; n++ {
		for _, kind := range []Symmetry{SymmetryNone, SymmetrySymmetric, SymmetrySkew} {
			a := randomMatrix(rng, n, kind)
			p, err := CharacteristicPolynomial(a)
			require.NoError(t, err, "n=%d kind=%s", n, kind)
			require.Equal(t, n, p.Degree())

			for _, x := range []int64{-2, -1, 0, 1, 3} {
				assert.Equal(t, leibniz(a, x), p.Eval(big.NewInt(x)).Int64(), "n=%d kind=%s x=%d", n, kind, x)
			}
			assert.NoError(t, VerifyCayleyHamilton(a, p))
		}
	}
}

func TestCharacteristicPolynomial_Path4(t *testing.T) {
	m := build(t, path(4))
	p, err := CharacteristicPolynomial(m.Adjacency)
	require.NoError(t, err)

	assert.True(t, p.Equal(PolynomialFromInt64(0, -3, 0, 1)))
	assert.Equal(t, "λ^4 - 3λ^2 + 1", p.String())
	assert.Equal(t, int64(1), p.Determinant().Int64())
	assert.Zero(t, p.Trace().Sign())
}

func TestCharacteristicPolynomial_K5(t *testing.T) {
	m := build(t, complete(5))
	p, err := CharacteristicPolynomial(m.Adjacency)
	require.NoError(t, err)
	assert.True(t, p.Equal(PolynomialFromInt64(0, -10, -20, -15, -4)), p.String())
}

func TestCharacteristicPolynomial_SkewHasNoOddTerms(t *testing.T) {
	for _, g := range []*graph.Graph{path(5), complete(4), complete(5)} {
		m := build(t, g)
		p, err := CharacteristicPolynomial(m.Structure)
		require.NoError(t, err)
		for k := 1; k <= p.Degree(); k += 2 {
			assert.Zero(t, p.Coefficient(k).Sign())
		}
		assert.NoError(t, VerifyCayleyHamilton(m.Structure, p))
		assert.NoError(t, VerifyCayleyHamilton(m.Adjacency, mustPoly(t, m.Adjacency)))
	}
}

func mustPoly(t *testing.T, a *matrix.IntMatrix) Polynomial {
	t.Helper()
	p, err := CharacteristicPolynomial(a)
	require.NoError(t, err)
	return p
}

func TestCharacteristicPolynomial_Errors(t *testing.T) {
	_, err := CharacteristicPolynomial(matrix.NewInt(2, 3))
	assert.ErrorIs(t, err, ErrNotSquare)
	_, err = CharacteristicPolynomial(nil)
	assert.ErrorIs(t, err, ErrNotSquare)

	a := build(t, path(3)).Adjacency
	err = VerifyCayleyHamilton(a, PolynomialFromInt64(0, -1, 0))
	assert.ErrorIs(t, err, ErrVerificationFailed)
	err = VerifyCayleyHamilton(a, PolynomialFromInt64(0, -2))
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestCharacteristicPolynomial_Empty(t *testing.T) {
	p, err := CharacteristicPolynomial(matrix.NewInt(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, p.Degree())
	assert.Equal(t, "1", p.String())

	set, err := Roots(p, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, set.Values)
}

func TestEigenvalues_Path4(t *testing.T) {
	set, err := Eigenvalues(build(t, path(4)).Adjacency, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, set.Values, 4)
	assert.Empty(t, set.Warnings)

	for i, v := range set.Values {
		want := 2 * math.Cos(float64(i+1)*math.Pi/5)
		assert.InDelta(t, want, v.Re, 1e-9)
		assert.Zero(t, v.Im)
		assert.Equal(t, 1, v.Multiplicity)
	}
}

func TestEigenvalues_LongPath(t *testing.T) {
	for _, n := range []int{60, 100} {
		t.Run(fmt.Sprintf("P%d", n), func(t *testing.T) {
			if n > 60 && testing.Short() {
				t.Skip("long path")
			}
			want := make([]float64, n)
			for k := range want {
				want[k] = 2 * math.Cos(float64(k+1)*math.Pi/float64(n+1))
			}
			slices.Sort(want)
			m := build(t, path(n))

			set, err := Eigenvalues(m.Adjacency, DefaultOptions())
			require.NoError(t, err)
			assert.Empty(t, set.Warnings)
			require.Len(t, set.Values, n)
			var got []float64
			for _, v := range set.Values {
				assert.Zero(t, v.Im)
				assert.Equal(t, 1, v.Multiplicity)
				got = append(got, v.Re)
			}
			slices.Sort(got)
			assert.InDeltaSlice(t, want, got, 1e-9)

			set, err = Eigenvalues(m.Structure, DefaultOptions())
			require.NoError(t, err)
			assert.Empty(t, set.Warnings)
			require.Len(t, set.Values, n)
			got = got[:0]
			for _, v := range set.Values {
				assert.Zero(t, v.Re)
				assert.Equal(t, 1, v.Multiplicity)
				got = append(got, v.Im)
			}
			slices.Sort(got)
			assert.InDeltaSlice(t, want, got, 1e-9)
		})
	}
}

func TestEigenvalues_K5(t *testing.T) {
	set, err := Eigenvalues(build(t, complete(5)).Adjacency, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, set.Values, 2)
	assert.Empty(t, set.Warnings)

	assert.InDelta(t, 4, set.Values[0].Re, 1e-9)
	assert.Equal(t, 1, set.Values[0].Multiplicity)
	assert.InDelta(t, -1, set.Values[1].Re, 1e-9)
	assert.Equal(t, 4, set.Values[1].Multiplicity)
	assert.Equal(t, 5, set.Dimension())
	assert.InDelta(t, 4, set.SpectralRadius(), 1e-9)
	assert.InDelta(t, 8, set.Energy(), 1e-9)
}

func TestEigenvalues_SkewTriangle(t *testing.T) {
	g := graph.MustNew([]string{"a", "b", "c"}, []graph.Edge{
		{U: "a", V: "b", Sign: 1}, {U: "b", V: "c", Sign: 1}, {U: "c", V: "a", Sign: 1},
	})
	j := build(t, g).Structure
	p := mustPoly(t, j)
	assert.Equal(t, "λ^3 + 3λ", p.String())

	set, err := Eigenvalues(j, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, set.Warnings)
	require.Len(t, set.Values, 3)

	r3 := math.Sqrt(3)
	assert.Equal(t, 0.0, set.Values[0].Re)
	assert.InDelta(t, r3, set.Values[0].Im, 1e-9)
	assert.InDelta(t, -r3, set.Values[1].Im, 1e-9)
	assert.Equal(t, Eigenvalue{Multiplicity: 1}, set.Values[2])
	assert.Equal(t, []float64{set.Values[0].Im}, set.Frequencies())
}

func TestEigenvalues_RepeatedImaginaryPairs(t *testing.T) {
	g := graph.MustNew([]string{"a", "b", "c", "d"}, []graph.Edge{
		{U: "a", V: "b", Sign: 1}, {U: "c", V: "d", Sign: -1},
	})
	set, err := Eigenvalues(build(t, g).Structure, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, set.Warnings)
	require.Len(t, set.Values, 2)
	for _, v := range set.Values {
		assert.Equal(t, 2, v.Multiplicity)
		assert.InDelta(t, 1, math.Abs(v.Im), 1e-12)
	}
}

func TestRoots_ZeroMatrix(t *testing.T) {
	set, err := Eigenvalues(matrix.NewInt(3, 3), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []Eigenvalue{{Multiplicity: 3}}, set.Values)
}

func TestRoots_NonSymmetricComplex(t *testing.T) {
	// λ² - 2λ + 5 has roots 1 ± 2i
	set, err := Roots(PolynomialFromInt64(-2, 5), Options{Symmetry: SymmetryNone})
	require.NoError(t, err)
	require.Len(t, set.Values, 2)
	assert.InDelta(t, 1, set.Values[0].Re, 1e-12)
	assert.InDelta(t, 2, set.Values[0].Im, 1e-12)
	assert.InDelta(t, -2, set.Values[1].Im, 1e-12)
}

func TestRoots_SymmetryViolationIsWarning(t *testing.T) {
	// λ² + 1 claimed symmetric: roots ±i are not real
	set, err := Roots(PolynomialFromInt64(0, 1), Options{Symmetry: SymmetrySymmetric})
	require.NoError(t, err)
	require.NotEmpty(t, set.Warnings)
	assert.True(t, errors.Is(set.Warnings[0], ErrNumericalInconsistency))
	assert.False(t, set.Consistent())
}

func TestRoots_ClusterToleranceMergesNearRoots(t *testing.T) {
	// ±√2 are 2√2 apart; the tolerance is relative to ρ = √2
	set, err := Roots(PolynomialFromInt64(0, -2), Options{ClusterTolerance: 0.5})
	require.NoError(t, err)
	assert.Len(t, set.Values, 2)

	set, err = Roots(PolynomialFromInt64(0, -2), Options{ClusterTolerance: 3})
	require.NoError(t, err)
	require.Len(t, set.Values, 1)
	assert.Equal(t, 2, set.Values[0].Multiplicity)
}

func TestEvenReduce(t *testing.T) {
	// λ⁵ - 5λ³ + 4λ = λ(μ² - 5μ + 4), μ = λ²
	p := PolynomialFromInt64(0, -5, 0, 4, 0)
	q, shift, ok := p.EvenReduce()
	require.True(t, ok)
	assert.Equal(t, 1, shift)
	assert.True(t, q.Equal(PolynomialFromInt64(-5, 4)))

	_, _, ok = PolynomialFromInt64(1, 0).EvenReduce()
	assert.False(t, ok)
}

func TestIntegerRoots(t *testing.T) {
	// μ(μ-1)(μ-4)(μ²+μ+1) = μ⁵ - 4μ⁴ - μ² + 4μ
	p := PolynomialFromInt64(-4, 0, -1, 4, 0)
	roots, rest := IntegerRoots(p)
	var got []int64
	for _, r := range roots {
		got = append(got, r.Int64())
	}
	assert.ElementsMatch(t, []int64{0, 1, 4}, got)
	assert.True(t, rest.Equal(PolynomialFromInt64(1, 1)), rest.String())
}

func TestIntegerRoots_Bounded(t *testing.T) {
	// λ² - 4096²
	roots, rest := IntegerRoots(PolynomialFromInt64(0, -4096*4096))
	var got []int64
	for _, r := range roots {
		got = append(got, r.Int64())
	}
	assert.ElementsMatch(t, []int64{4096, -4096}, got)
	assert.Zero(t, rest.Degree())

	// λ² + 10¹⁸ + 9 has no real roots; the scan stops at the search cap
	p := PolynomialFromInt64(0, 1_000_000_000_000_000_009)
	roots, rest = IntegerRoots(p)
	assert.Empty(t, roots)
	assert.True(t, rest.Equal(p))

	// (λ - 3)(λ - 2⁴⁰): the large root is past the cap and stays in rest
	big40 := int64(1) << 40
	roots, rest = IntegerRoots(PolynomialFromInt64(-(big40 + 3), 3*big40))
	require.Len(t, roots, 1)
	assert.Equal(t, int64(3), roots[0].Int64())
	assert.True(t, rest.Equal(PolynomialFromInt64(-big40)), rest.String())
}

func TestSquareFree_Multiplicities(t *testing.T) {
	// λ³(λ+1)²(λ-2) = λ⁶ + 0λ⁵ - 3λ⁴ - 2λ³
	p := PolynomialFromInt64(0, -3, -2, 0, 0, 0)
	factors := squareFree(ratFromPolynomial(p))
	require.Len(t, factors, 3)
	assert.Equal(t, 1, factors[0].deg())
	assert.Equal(t, 1, factors[1].deg())
	assert.Equal(t, 1, factors[2].deg())

	set, err := Roots(p, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []Eigenvalue{
		{Re: 2, Multiplicity: 1},
		{Re: 0, Multiplicity: 3},
		{Re: -1, Multiplicity: 2},
	}, roundValues(set.Values))
}

func roundValues(vs []Eigenvalue) []Eigenvalue {
	out := make([]Eigenvalue, len(vs))
	for i, v := range vs {
		out[i] = Eigenvalue{Re: math.Round(v.Re*1e9) / 1e9, Im: math.Round(v.Im*1e9) / 1e9, Multiplicity: v.Multiplicity}
	}
	return out
}
