package spectral

import (
	"cmp"
	"fmt"
	"math"
	"math/cmplx"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phnet/internal/matrix"
)

// Symmetry is the structural expectation used to validate a spectrum.
type Symmetry int

const (
	// SymmetryAuto lets Eigenvalues inspect the matrix; Roots treats it as
	// SymmetryNone.
	SymmetryAuto Symmetry = iota
	SymmetryNone
	SymmetrySymmetric
	SymmetrySkew
)

func (s Symmetry) String() string {
	switch s {
	case SymmetryNone:
		return "none"
	case SymmetrySymmetric:
		return "symmetric"
	case SymmetrySkew:
		return "skew"
	default:
		return "auto"
	}
}

const (
	DefaultClusterTolerance = 1e-6
	snapTolerance           = 1e-12
)

type Options struct {
	// ClusterTolerance is the relative distance (times the spectral radius)
	// below which roots are merged.
	ClusterTolerance float64
	Symmetry         Symmetry
}

func DefaultOptions() Options {
	return Options{ClusterTolerance: DefaultClusterTolerance}
}

// Eigenvalues computes the characteristic polynomial of a and its roots.
// With SymmetryAuto the expectation is read off the matrix.
func Eigenvalues(a *matrix.IntMatrix, opts Options) (*EigenvalueSet, error) {
	p, err := CharacteristicPolynomial(a)
	if err != nil {
		return nil, err
	}
	if opts.Symmetry == SymmetryAuto {
		switch {
		case a.IsSkewSymmetric():
			opts.Symmetry = SymmetrySkew
		case a.IsSymmetric():
			opts.Symmetry = SymmetrySymmetric
		default:
			opts.Symmetry = SymmetryNone
		}
	}
	return Roots(p, opts)
}

// Roots finds every root of p with its multiplicity.
func Roots(p Polynomial, opts Options) (*EigenvalueSet, error) {
	if opts.ClusterTolerance <= 0 {
		opts.ClusterTolerance = DefaultClusterTolerance
	}

	var raw []Eigenvalue
	for i, f := range squareFree(ratFromPolynomial(p)) {
		if f.deg() < 1 {
			continue
		}
		zs, err := solveSquareFree(f)
		if err != nil {
			return nil, err
		}
		for _, z := range zs {
			raw = append(raw, Eigenvalue{Re: real(z), Im: imag(z), Multiplicity: i + 1})
		}
	}

	set := &EigenvalueSet{Values: cluster(raw, opts.ClusterTolerance)}
	set.Warnings = validate(set, p, opts.Symmetry)
	if d := set.Dimension(); d != p.Degree() {
		set.Warnings = append(set.Warnings,
			fmt.Errorf("%w: multiplicities sum to %d, degree is %d", ErrNumericalInconsistency, d, p.Degree()))
	}
	return set, nil
}

// solveSquareFree returns the roots of the square-free factor f. The
// companion-matrix eigenvalues seed a high-precision refinement against f's
// exact coefficients.
func solveSquareFree(f ratPoly) ([]complex128, error) {
	c := f.float64s()
	d := len(c) - 1
	lead := c[d]
	monic := make([]float64, len(c))
	for i := range c {
		monic[i] = c[i] / lead
	}
	if d == 1 {
		return []complex128{complex(-monic[0], 0)}, nil
	}

	comp := mat.NewDense(d, d, nil)
	for j := 0; j < d; j++ {
		comp.Set(0, j, -monic[d-1-j])
	}
	for i := 1; i < d; i++ {
		comp.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(comp, mat.EigenNone); !ok {
		return nil, fmt.Errorf("%w: companion matrix of degree %d", ErrNoConvergence, d)
	}
	return refineRoots(f, eig.Values(nil)), nil
}

func cluster(raw []Eigenvalue, eps float64) []Eigenvalue {
	rho := 0.0
	for _, v := range raw {
		rho = math.Max(rho, v.Abs())
	}
	scale := math.Max(rho, 1)
	tol := eps * scale

	var out []Eigenvalue
	for _, v := range raw {
		merged := false
		for k := range out {
			if cmplx.Abs(out[k].Complex()-v.Complex()) <= tol {
				total := float64(out[k].Multiplicity + v.Multiplicity)
				wk := float64(out[k].Multiplicity) / total
				wv := float64(v.Multiplicity) / total
				out[k].Re = out[k].Re*wk + v.Re*wv
				out[k].Im = out[k].Im*wk + v.Im*wv
				out[k].Multiplicity += v.Multiplicity
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, v)
		}
	}

	snap := snapTolerance * scale
	for k := range out {
		if math.Abs(out[k].Re) < snap {
			out[k].Re = 0
		}
		if math.Abs(out[k].Im) < snap {
			out[k].Im = 0
		}
	}

	slices.SortFunc(out, func(a, b Eigenvalue) int {
		if c := cmp.Compare(b.Re, a.Re); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Abs(), a.Abs()); c != 0 {
			return c
		}
		return cmp.Compare(b.Im, a.Im)
	})
	return out
}

func validate(set *EigenvalueSet, p Polynomial, sym Symmetry) []error {
	scale := math.Max(set.SpectralRadius(), 1)
	tol := 1e3 * snapTolerance * scale * float64(max(p.Degree(), 1))

	var warnings []error
	switch sym {
	case SymmetrySymmetric:
		sum := 0.0
		for _, v := range set.Values {
			if math.Abs(v.Im) > tol {
				warnings = append(warnings, fmt.Errorf("%w: non-real eigenvalue %s of a symmetric matrix", ErrNumericalInconsistency, v))
			}
			sum += float64(v.Multiplicity) * v.Re
		}
		tr, _ := p.Trace().Float64()
		if math.Abs(sum-tr) > tol {
			warnings = append(warnings, fmt.Errorf("%w: eigenvalue sum %.12g differs from trace %.12g", ErrNumericalInconsistency, sum, tr))
		}
	case SymmetrySkew:
		for _, v := range set.Values {
			if math.Abs(v.Re) > tol {
				warnings = append(warnings, fmt.Errorf("%w: eigenvalue %s of a skew matrix is not imaginary", ErrNumericalInconsistency, v))
				continue
			}
			if v.Im > 0 && set.Multiplicity(complex(0, -v.Im), tol) != v.Multiplicity {
				warnings = append(warnings, fmt.Errorf("%w: eigenvalue %s has no conjugate partner of equal multiplicity", ErrNumericalInconsistency, v))
			}
		}
	}
	return warnings
}
