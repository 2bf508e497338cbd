package spectral

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Eigenvalue is one distinct root with its algebraic multiplicity.
type Eigenvalue struct {
	Re           float64 `json:"re"`
	Im           float64 `json:"im"`
	Multiplicity int     `json:"multiplicity"`
}

func (e Eigenvalue) Complex() complex128 { return complex(e.Re, e.Im) }

func (e Eigenvalue) Abs() float64 { return cmplx.Abs(e.Complex()) }

func (e Eigenvalue) IsReal() bool { return e.Im == 0 }

func (e Eigenvalue) String() string {
	var s string
	switch {
	case e.Im == 0:
		s = fmt.Sprintf("%.6g", e.Re)
	case e.Re == 0:
		s = fmt.Sprintf("%.6gi", e.Im)
	default:
		s = fmt.Sprintf("%.6g%+.6gi", e.Re, e.Im)
	}
	if e.Multiplicity > 1 {
		s += fmt.Sprintf(" (x%d)", e.Multiplicity)
	}
	return s
}

// EigenvalueSet is the spectrum of a matrix, sorted by descending real
// part, then magnitude, then imaginary part. Warnings wrap
// ErrNumericalInconsistency and never invalidate the values.
type EigenvalueSet struct {
	Values   []Eigenvalue `json:"values"`
	Warnings []error      `json:"-"`
}

// Dimension is the sum of multiplicities, equal to the matrix order.
func (s *EigenvalueSet) Dimension() int {
	n := 0
	for _, v := range s.Values {
		n += v.Multiplicity
	}
	return n
}

// SpectralRadius is max |λ|.
func (s *EigenvalueSet) SpectralRadius() float64 {
	rho := 0.0
	for _, v := range s.Values {
		rho = math.Max(rho, v.Abs())
	}
	return rho
}

// Energy is the graph energy Σ mult·|λ|.
func (s *EigenvalueSet) Energy() float64 {
	e := 0.0
	for _, v := range s.Values {
		e += float64(v.Multiplicity) * v.Abs()
	}
	return e
}

// Frequencies returns the distinct positive imaginary parts, the oscillation
// frequencies of ẋ = Jx, in descending order.
func (s *EigenvalueSet) Frequencies() []float64 {
	var out []float64
	for _, v := range s.Values {
		if v.Im > 0 {
			out = append(out, v.Im)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] > out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Multiplicity returns the multiplicity of the eigenvalue closest to z
// within tol, or zero.
func (s *EigenvalueSet) Multiplicity(z complex128, tol float64) int {
	for _, v := range s.Values {
		if cmplx.Abs(v.Complex()-z) <= tol {
			return v.Multiplicity
		}
	}
	return 0
}

func (s *EigenvalueSet) Consistent() bool { return len(s.Warnings) == 0 }
