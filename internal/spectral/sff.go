package spectral

import (
	"fmt"
	"math/big"

	"github.com/san-kum/phnet/internal/matrix"
)

type bigMatrix [][]*big.Int

func newBigMatrix(n int) bigMatrix {
	m := make(bigMatrix, n)
	for i := range m {
		m[i] = make([]*big.Int, n)
		for j := range m[i] {
			m[i][j] = new(big.Int)
		}
	}
	return m
}

func toBig(a *matrix.IntMatrix) bigMatrix {
	n := a.Rows()
	m := newBigMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m[i][j].SetInt64(a.At(i, j))
		}
	}
	return m
}

func (m bigMatrix) mul(o bigMatrix) bigMatrix {
	n := len(m)
	out := newBigMatrix(n)
	var t big.Int
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			if m[i][k].Sign() == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				if o[k][j].Sign() == 0 {
					continue
				}
				t.Mul(m[i][k], o[k][j])
				out[i][j].Add(out[i][j], &t)
			}
		}
	}
	return out
}

func (m bigMatrix) trace() *big.Int {
	tr := new(big.Int)
	for i := range m {
		tr.Add(tr, m[i][i])
	}
	return tr
}

func (m bigMatrix) addDiag(c *big.Int) {
	for i := range m {
		m[i][i].Add(m[i][i], c)
	}
}

func (m bigMatrix) isZero() bool {
	for i := range m {
		for j := range m[i] {
			if m[i][j].Sign() != 0 {
				return false
			}
		}
	}
	return true
}

// CharacteristicPolynomial computes det(λI - A) exactly with the
// Faddeev–LeVerrier recurrence
//
//	B₀ = I,  Aₖ = A·Bₖ₋₁,  cₖ = -tr(Aₖ)/k,  Bₖ = Aₖ + cₖI
//
// in O(n⁴) big-integer operations. Every division must be exact and Bₙ must
// vanish; otherwise the result is ErrVerificationFailed.
func CharacteristicPolynomial(a *matrix.IntMatrix) (Polynomial, error) {
	if a == nil || !a.IsSquare() {
		return Polynomial{}, ErrNotSquare
	}

	n := a.Rows()
	am := toBig(a)
	b := newBigMatrix(n)
	b.addDiag(big.NewInt(1))

	coeffs := make([]*big.Int, n)
	rem := new(big.Int)
	for k := 1; k <= n; k++ {
		ak := am.mul(b)
		c, r := new(big.Int).QuoRem(ak.trace(), big.NewInt(int64(k)), rem)
		if r.Sign() != 0 {
			return Polynomial{}, fmt.Errorf("%w: tr(A_%d) not divisible by %d", ErrVerificationFailed, k, k)
		}
		c.Neg(c)
		coeffs[k-1] = c
		ak.addDiag(c)
		b = ak
	}
	if !b.isZero() {
		return Polynomial{}, fmt.Errorf("%w: B_%d is not the zero matrix", ErrVerificationFailed, n)
	}

	p := Polynomial{coeffs: coeffs}
	if a.IsSkewSymmetric() {
		for k := 1; k <= n; k += 2 {
			if coeffs[k-1].Sign() != 0 {
				return Polynomial{}, fmt.Errorf("%w: c_%d = %s on a skew-symmetric matrix", ErrVerificationFailed, k, coeffs[k-1])
			}
		}
	}
	return p, nil
}

// VerifyCayleyHamilton substitutes A into p by Horner's rule and checks that
// p(A) is the zero matrix.
func VerifyCayleyHamilton(a *matrix.IntMatrix, p Polynomial) error {
	if a == nil || !a.IsSquare() {
		return ErrNotSquare
	}
	n := a.Rows()
	if p.Degree() != n {
		return fmt.Errorf("%w: polynomial degree %d for %dx%d matrix", ErrVerificationFailed, p.Degree(), n, n)
	}

	am := toBig(a)
	r := newBigMatrix(n)
	r.addDiag(big.NewInt(1))
	for _, c := range p.coeffs {
		r = r.mul(am)
		r.addDiag(c)
	}
	if !r.isZero() {
		return fmt.Errorf("%w: p(A) is not zero", ErrVerificationFailed)
	}
	return nil
}
