package integrators

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phnet/internal/dynamo"
	"github.com/san-kum/phnet/internal/matrix"
)

// Cayley advances x by solving (I - hJ/2)x⁺ = (I + hJ/2)x. For skew J the
// map is orthogonal, so ‖x‖ is preserved up to round-off, and it is second
// order accurate. The trapezoidal rule applied to ẋ = Jx yields exactly the
// same update; both names share this type.
type Cayley struct {
	method Method
	n      int
	h      float64

	// dense path
	lu  *mat.LU
	rhs *mat.Dense

	// sparse path
	edges   *matrix.EdgeList
	tol     float64
	maxIter int
}

func NewCayley(j *matrix.IntMatrix, h float64, opts Options) (*Cayley, error) {
	return newCayley(MethodCayley, j, h, opts)
}

// NewTrapezoidal is NewCayley under the Trapezoidal label.
func NewTrapezoidal(j *matrix.IntMatrix, h float64, opts Options) (*Cayley, error) {
	return newCayley(MethodTrapezoidal, j, h, opts)
}

func newCayley(m Method, j *matrix.IntMatrix, h float64, opts Options) (*Cayley, error) {
	if err := checkStructure(j); err != nil {
		return nil, err
	}
	if err := checkStep(h); err != nil {
		return nil, err
	}

	c := &Cayley{method: m, n: j.Rows(), h: h}
	setup := c.initDense
	if opts.Sparse {
		setup = func(j *matrix.IntMatrix) error { return c.initSparse(j, opts) }
	}
	if err := setup(j); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cayley) initDense(j *matrix.IntMatrix) error {
	n := c.n
	jd := j.Dense()
	lhs := mat.NewDense(n, n, nil)
	c.rhs = mat.NewDense(n, n, nil)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			v := 0.5 * c.h * jd.At(a, b)
			lhs.Set(a, b, -v)
			c.rhs.Set(a, b, v)
		}
		lhs.Set(a, a, lhs.At(a, a)+1)
		c.rhs.Set(a, a, c.rhs.At(a, a)+1)
	}

	c.lu = &mat.LU{}
	c.lu.Factorize(lhs)
	if cond := c.lu.Cond(); math.IsNaN(cond) || cond > mat.ConditionTolerance {
		return fmt.Errorf("%w: condition number %.3g of I - hJ/2 at h = %g", ErrSingularSolve, cond, c.h)
	}
	return nil
}

func (c *Cayley) initSparse(j *matrix.IntMatrix, opts Options) error {
	el, err := matrix.EdgeListFromStructure(j)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotSkew, err)
	}
	c.edges = el
	c.tol = opts.Tolerance
	if c.tol <= 0 {
		c.tol = DefaultOptions().Tolerance
	}
	c.maxIter = opts.MaxIterations
	if c.maxIter <= 0 {
		c.maxIter = 4*c.n + 100
	}

	// ‖J‖₂ ≤ max degree bounds cond(I - hJ/2) by √(1 + (h·d/2)²).
	maxDeg := 0
	for a := 0; a < c.n; a++ {
		d := 0
		for b := 0; b < c.n; b++ {
			if j.At(a, b) != 0 {
				d++
			}
		}
		maxDeg = max(maxDeg, d)
	}
	if bound := math.Hypot(1, 0.5*c.h*float64(maxDeg)); bound > mat.ConditionTolerance {
		return fmt.Errorf("%w: condition bound %.3g of I - hJ/2 at h = %g", ErrSingularSolve, bound, c.h)
	}
	return nil
}

func (c *Cayley) Method() Method    { return c.method }
func (c *Cayley) StepSize() float64 { return c.h }
func (c *Cayley) Dim() int          { return c.n }
func (c *Cayley) Sparse() bool      { return c.edges != nil }

func (c *Cayley) Step(x dynamo.State, _ float64) (dynamo.State, error) {
	if err := checkInput(x, c.n); err != nil {
		return nil, err
	}

	var next dynamo.State
	var err error
	if c.edges != nil {
		next, err = c.stepSparse(x)
	} else {
		next, err = c.stepDense(x)
	}
	if err != nil {
		return nil, err
	}
	if !next.IsValid() {
		return nil, fmt.Errorf("%w: non-finite state", ErrSingularSolve)
	}
	return next, nil
}

func (c *Cayley) stepDense(x dynamo.State) (dynamo.State, error) {
	var b mat.VecDense
	b.MulVec(c.rhs, mat.NewVecDense(c.n, x))

	var next mat.VecDense
	if err := c.lu.SolveVecTo(&next, false, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularSolve, err)
	}
	return dynamo.State(next.RawVector().Data), nil
}

// stepSparse solves M y = b with M = I - hJ/2 through the normal equations
// MᵀM y = Mᵀb. MᵀM = I - (h²/4)J² is symmetric positive definite, so plain
// conjugate gradients apply, and each iteration costs two edge-list
// products.
func (c *Cayley) stepSparse(x dynamo.State) (dynamo.State, error) {
	n, half := c.n, 0.5*c.h
	jx := make([]float64, n)

	// b = (I + hJ/2)x, rhs = Mᵀb = (I + hJ/2)b
	b := make([]float64, n)
	_ = c.edges.MulVec(jx, x)
	for i := range b {
		b[i] = x[i] + half*jx[i]
	}
	rhs := make([]float64, n)
	_ = c.edges.MulVec(jx, b)
	for i := range rhs {
		rhs[i] = b[i] + half*jx[i]
	}

	tmp := make([]float64, n)
	apply := func(dst, v []float64) {
		_ = c.edges.MulVec(tmp, v)
		_ = c.edges.MulVec(dst, tmp)
		for i := range dst {
			dst[i] = v[i] - half*half*dst[i]
		}
	}

	y := x.Clone()
	r := make([]float64, n)
	apply(r, y)
	for i := range r {
		r[i] = rhs[i] - r[i]
	}
	p := append([]float64(nil), r...)
	ap := make([]float64, n)

	target := c.tol * math.Max(norm(rhs), math.SmallestNonzeroFloat64)
	rr := dot(r, r)
	for it := 0; it < c.maxIter; it++ {
		if math.Sqrt(rr) <= target {
			return y, nil
		}
		apply(ap, p)
		pap := dot(p, ap)
		if !(pap > 0) {
			break
		}
		alpha := rr / pap
		for i := range y {
			y[i] += alpha * p[i]
			r[i] -= alpha * ap[i]
		}
		rrNext := dot(r, r)
		beta := rrNext / rr
		for i := range p {
			p[i] = r[i] + beta*p[i]
		}
		rr = rrNext
	}
	if math.Sqrt(rr) <= target {
		return y, nil
	}
	return nil, fmt.Errorf("%w: CGNR residual %.3g after %d iterations", ErrSingularSolve, math.Sqrt(rr), c.maxIter)
}
