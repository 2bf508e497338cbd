package matrix

import (
	"math/rand"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/phnet/internal/graph"
)

func triangle() *graph.Graph {
	return graph.MustNew([]string{"a", "b", "c"}, []graph.Edge{
		{U: "a", V: "b", Sign: 1},
		{U: "b", V: "c", Sign: 1},
		{U: "c", V: "a", Sign: 1},
	})
}

// m1 - k1 - m2 - k2, springs on the stiffness side.
func chain() (*graph.Graph, *graph.Partition) {
	g := graph.MustNew([]string{"m1", "k1", "m2", "k2"}, []graph.Edge{
		{U: "m1", V: "k1", Sign: 1},
		{U: "k1", V: "m2", Sign: 1},
		{U: "m2", V: "k2", Sign: 1},
	})
	p, err := graph.PartitionByID(g, []string{"k1", "k2"})
	if err != nil {
		panic(err)
	}
	return g, p
}

func TestBuild_Triangle(t *testing.T) {
	m, err := Build(triangle())
	require.NoError(t, err)

	assert.True(t, m.Adjacency.IsSymmetric())
	assert.True(t, m.Structure.IsSkewSymmetric())
	assert.Equal(t, []int{2, 2, 2}, m.Degrees)
	assert.Equal(t, int64(1), m.Structure.At(0, 1))
	assert.Equal(t, int64(-1), m.Structure.At(1, 0))
	assert.Equal(t, int64(-1), m.Structure.At(0, 2))
	for i := 0; i < 3; i++ {
		assert.Zero(t, m.Adjacency.At(i, i))
		assert.Zero(t, m.Structure.At(i, i))
	}
}

func TestBuild_ReversedEdgeIsSameMatrix(t *testing.T) {
	g1 := graph.MustNew([]string{"x", "y"}, []graph.Edge{{U: "x", V: "y", Sign: 1}})
	g2 := graph.MustNew([]string{"x", "y"}, []graph.Edge{{U: "y", V: "x", Sign: -1}})
	m1, err := Build(g1)
	require.NoError(t, err)
	m2, err := Build(g2)
	require.NoError(t, err)
	assert.True(t, m1.Structure.Equal(m2.Structure))
}

func TestBuild_NilGraph(t *testing.T) {
	_, err := Build(nil)
	assert.ErrorIs(t, err, graph.ErrInvalidGraph)
}

func TestBuild_Empty(t *testing.T) {
	g := graph.MustNew(nil, nil)
	m, err := Build(g)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Structure.Rows())
	assert.Equal(t, "[]\n", Format(m.Structure))
}

func TestBuildIncidence_Chain(t *testing.T) {
	g, p := chain()
	b, err := BuildIncidence(g, p)
	require.NoError(t, err)

	// rows m1, m2; cols k1, k2
	assert.Equal(t, []int{0, 2}, b.Rows)
	assert.Equal(t, []int{1, 3}, b.Cols)
	assert.Equal(t, int64(1), b.Mat.At(0, 0))
	assert.Equal(t, int64(-1), b.Mat.At(1, 0), "k1-m2 read from the inertia side")
	assert.Equal(t, int64(1), b.Mat.At(1, 1))
	assert.Equal(t, []int64{1, -1}, b.ColumnNonzeros(0))
	assert.Equal(t, []int{0, 1}, b.ColumnEdges[0])
	assert.Equal(t, []int{2}, b.ColumnEdges[1])
}

func TestBuildIncidence_Errors(t *testing.T) {
	g := triangle()
	p, err := graph.PartitionByID(g, []string{"c"})
	require.NoError(t, err)
	_, err = BuildIncidence(g, p)
	assert.ErrorIs(t, err, ErrNotBipartite)

	short := graph.NewPartition([]graph.Side{graph.Inertia})
	_, err = BuildIncidence(g, short)
	assert.ErrorIs(t, err, ErrInvalidPartition)

	_, err = BuildIncidence(g, nil)
	assert.ErrorIs(t, err, ErrInvalidPartition)
}

func TestEdgeList_MatchesDense(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var vs []string
	for i := 0; i < 8; i++ {
		vs = append(vs, string(rune('a'+i)))
	}
	var es []graph.Edge
	for i := 0; i < 8; i++ {
		for j := i + 1; j < 8; j++ {
			if rng.Intn(2) == 0 {
				continue
			}
			s := 1
			if rng.Intn(2) == 0 {
				s = -1
			}
			es = append(es, graph.Edge{U: vs[j], V: vs[i], Sign: s})
		}
	}
	g := graph.MustNew(vs, es)
	m, err := Build(g)
	require.NoError(t, err)

	el, err := NewEdgeList(g)
	require.NoError(t, err)
	fromJ, err := EdgeListFromStructure(m.Structure)
	require.NoError(t, err)

	x := make([]float64, 8)
	for i := range x {
		x[i] = rng.NormFloat64()
	}
	want, err := m.Structure.MulVec(x)
	require.NoError(t, err)

	got := make([]float64, 8)
	require.NoError(t, el.MulVec(got, x))
	assert.InDeltaSlice(t, want, got, 1e-12)

	require.NoError(t, fromJ.MulVec(got, x))
	assert.InDeltaSlice(t, want, got, 1e-12)

	require.NoError(t, el.MulTransVec(got, x))
	for i := range got {
		assert.InDelta(t, -want[i], got[i], 1e-12)
	}

	assert.ErrorIs(t, el.MulVec(got, x[:3]), ErrDimensionMismatch)
}

func TestIntFromRows_Ragged(t *testing.T) {
	_, err := IntFromRows([][]int64{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestDense(t *testing.T) {
	j := MustIntFromRows([][]int64{{0, 1}, {-1, 0}})
	d := j.Dense()
	r, c := d.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, -1.0, d.At(1, 0))
	assert.Contains(t, FormatDense(d, 1), "-1")
}

func TestFormat_Golden(t *testing.T) {
	m, err := Build(triangle())
	require.NoError(t, err)

	out := "adjacency:\n" + Format(m.Adjacency) + "structure:\n" + Format(m.Structure)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "triangle", []byte(out))
}

func TestFormat_WideEntries(t *testing.T) {
	m := MustIntFromRows([][]int64{{10, -2}, {3, 0}})
	assert.Equal(t, "[10 -2]\n[ 3  0]\n", Format(m))
}
