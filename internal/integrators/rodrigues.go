package integrators

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phnet/internal/dynamo"
	"github.com/san-kum/phnet/internal/matrix"
)

const (
	zeroModeTolerance  = 1e-10
	frequencyTolerance = 1e-9
)

// plane is a J-invariant 2D subspace with Ju = ωw and Jw = -ωu.
type plane struct {
	u, w  []float64
	omega float64
}

// Rodrigues is the exact flow of ẋ = Jx. Setup diagonalizes JᵀJ once in
// O(n³); each evaluation costs O(n·planes).
type Rodrigues struct {
	n      int
	h      float64
	j      *mat.Dense
	planes []plane
}

func NewRodrigues(j *matrix.IntMatrix, h float64) (*Rodrigues, error) {
	if err := checkStructure(j); err != nil {
		return nil, err
	}
	if err := checkStep(h); err != nil {
		return nil, err
	}

	r := &Rodrigues{n: j.Rows(), h: h, j: j.Dense()}
	if err := r.buildPlanes(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Rodrigues) Method() Method    { return MethodRodrigues }
func (r *Rodrigues) StepSize() float64 { return r.h }
func (r *Rodrigues) Dim() int          { return r.n }

// Frequencies returns ω for every invariant plane, ascending.
func (r *Rodrigues) Frequencies() []float64 {
	out := make([]float64, len(r.planes))
	for i, p := range r.planes {
		out[i] = p.omega
	}
	slices.Sort(out)
	return out
}

// buildPlanes diagonalizes S = JᵀJ = -J², whose eigenvalues are ω² with
// even multiplicity. Every eigenspace is J-invariant; inside it the vectors
// are paired into planes (u, Ju/ω) by Gram–Schmidt.
func (r *Rodrigues) buildPlanes() error {
	n := r.n
	s := mat.NewSymDense(n, nil)
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			sum := 0.0
			for k := 0; k < n; k++ {
				sum += r.j.At(k, a) * r.j.At(k, b)
			}
			s.SetSym(a, b, sum)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(s, true); !ok {
		return fmt.Errorf("integrators: eigendecomposition of JᵀJ did not converge")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	top := math.Max(vals[len(vals)-1], 1)
	var basis [][]float64
	for lo := 0; lo < n; {
		hi := lo + 1
		for hi < n && vals[hi]-vals[lo] <= frequencyTolerance*top {
			hi++
		}
		if vals[lo] > zeroModeTolerance*top {
			cands := make([][]float64, 0, hi-lo)
			for c := lo; c < hi; c++ {
				cands = append(cands, mat.Col(nil, c, &vecs))
			}
			basis = r.pairPlanes(cands, basis)
		}
		lo = hi
	}
	return nil
}

// pairPlanes extracts len(cands)/2 planes from one eigenspace, always taking
// the candidate least covered by the basis built so far.
func (r *Rodrigues) pairPlanes(cands, basis [][]float64) [][]float64 {
	for k := 0; k < len(cands)/2; k++ {
		var best []float64
		bestNorm := 0.0
		for _, c := range cands {
			res := orthogonalize(c, basis)
			if nrm := norm(res); nrm > bestNorm {
				best, bestNorm = res, nrm
			}
		}
		if bestNorm == 0 {
			return basis
		}
		u := scale(best, 1/bestNorm)

		ju := make([]float64, r.n)
		for a := range ju {
			ju[a] = dot(r.j.RawRowView(a), u)
		}
		w := orthogonalize(ju, append(basis, u))
		omega := norm(w)
		w = scale(w, 1/omega)

		r.planes = append(r.planes, plane{u: u, w: w, omega: omega})
		basis = append(basis, u, w)
	}
	return basis
}

// orthogonalize removes the components of v along the orthonormal basis,
// twice for numerical stability.
func orthogonalize(v []float64, basis [][]float64) []float64 {
	out := slices.Clone(v)
	for pass := 0; pass < 2; pass++ {
		for _, b := range basis {
			d := dot(out, b)
			for i := range out {
				out[i] -= d * b[i]
			}
		}
	}
	return out
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func norm(v []float64) float64 { return math.Sqrt(dot(v, v)) }

func scale(v []float64, f float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] * f
	}
	return out
}

// Propagate returns exp(Jt)·x0. Components outside every plane lie in the
// kernel of J and are left unchanged.
func (r *Rodrigues) Propagate(x0 dynamo.State, t float64) (dynamo.State, error) {
	if err := checkInput(x0, r.n); err != nil {
		return nil, err
	}
	out := x0.Clone()
	for _, p := range r.planes {
		a, b := dot(x0, p.u), dot(x0, p.w)
		sin, cos := math.Sincos(p.omega * t)
		da := a*cos - b*sin - a
		db := a*sin + b*cos - b
		for i := range out {
			out[i] += da*p.u[i] + db*p.w[i]
		}
	}
	return out, nil
}

func (r *Rodrigues) Step(x dynamo.State, _ float64) (dynamo.State, error) {
	return r.Propagate(x, r.h)
}

// ExpMatrix returns exp(Jt) as a dense orthogonal matrix. When J has a single
// non-zero frequency ω the closed form
//
//	exp(Jt) = I + (sin θ/ω)J + ((1 - cos θ)/ω²)J²,  θ = ωt
//
// is used; otherwise it is assembled from the invariant planes.
func (r *Rodrigues) ExpMatrix(t float64) *mat.Dense {
	n := r.n
	e := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		e.Set(i, i, 1)
	}
	if len(r.planes) == 0 {
		return e
	}

	if omega, ok := r.singleFrequency(); ok {
		sin, cos := math.Sincos(omega * t)
		var j2 mat.Dense
		j2.Mul(r.j, r.j)
		var term mat.Dense
		term.Scale(sin/omega, r.j)
		e.Add(e, &term)
		term.Scale((1-cos)/(omega*omega), &j2)
		e.Add(e, &term)
		return e
	}

	for _, p := range r.planes {
		sin, cos := math.Sincos(p.omega * t)
		for a := 0; a < n; a++ {
			for b := 0; b < n; b++ {
				v := (cos-1)*(p.u[a]*p.u[b]+p.w[a]*p.w[b]) + sin*(p.w[a]*p.u[b]-p.u[a]*p.w[b])
				e.Set(a, b, e.At(a, b)+v)
			}
		}
	}
	return e
}

func (r *Rodrigues) singleFrequency() (float64, bool) {
	omega := r.planes[0].omega
	for _, p := range r.planes[1:] {
		if math.Abs(p.omega-omega) > frequencyTolerance*math.Max(omega, 1) {
			return 0, false
		}
	}
	return omega, true
}
