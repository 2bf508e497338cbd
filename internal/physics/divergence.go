package physics

import (
	"github.com/san-kum/phnet/internal/dynamo"
	"github.com/san-kum/phnet/internal/matrix"
)

// Divergence returns div(i) = Σⱼ J[i,j]·x[j], the instantaneous flow into
// vertex i.
func Divergence(j *matrix.IntMatrix, x dynamo.State) (dynamo.State, error) {
	if err := dynamo.CheckDim(x, j.Cols()); err != nil {
		return nil, err
	}
	y, err := j.MulVec(x)
	if err != nil {
		return nil, err
	}
	return y, nil
}

// SparseDivergence is Divergence evaluated from the edge list in O(m).
func SparseDivergence(el *matrix.EdgeList, x dynamo.State) (dynamo.State, error) {
	if err := dynamo.CheckDim(x, el.Dim()); err != nil {
		return nil, err
	}
	y := make(dynamo.State, el.Dim())
	if err := el.MulVec(y, x); err != nil {
		return nil, err
	}
	return y, nil
}

// PowerBalance returns Σ xᵢ·div(i) = xᵀJx, the rate of change of H.
func PowerBalance(x, div dynamo.State) float64 {
	return x.Dot(div)
}

// NetFlow returns Σ div(i). Unlike PowerBalance it is not conserved in
// general; it vanishes only when every column of J sums to zero.
func NetFlow(div dynamo.State) float64 {
	sum := 0.0
	for _, v := range div {
		sum += v
	}
	return sum
}
