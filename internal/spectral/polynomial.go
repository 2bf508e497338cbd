package spectral

import (
	"fmt"
	"math/big"
	"strings"
)

// Polynomial is a monic characteristic polynomial
//
//	p(λ) = λⁿ + c₁λⁿ⁻¹ + … + cₙ
//
// stored as c₁..cₙ. The zero-degree polynomial (n = 0) is the constant 1.
type Polynomial struct {
	coeffs []*big.Int
}

// NewPolynomial copies c₁..cₙ.
func NewPolynomial(coeffs ...*big.Int) Polynomial {
	p := Polynomial{coeffs: make([]*big.Int, len(coeffs))}
	for i, c := range coeffs {
		p.coeffs[i] = new(big.Int).Set(c)
	}
	return p
}

// PolynomialFromInt64 is NewPolynomial for small literals.
func PolynomialFromInt64(coeffs ...int64) Polynomial {
	p := Polynomial{coeffs: make([]*big.Int, len(coeffs))}
	for i, c := range coeffs {
		p.coeffs[i] = big.NewInt(c)
	}
	return p
}

func (p Polynomial) Degree() int { return len(p.coeffs) }

// Coefficients returns copies of c₁..cₙ.
func (p Polynomial) Coefficients() []*big.Int {
	out := make([]*big.Int, len(p.coeffs))
	for i, c := range p.coeffs {
		out[i] = new(big.Int).Set(c)
	}
	return out
}

// Coefficient returns cₖ, with c₀ = 1.
func (p Polynomial) Coefficient(k int) *big.Int {
	if k == 0 {
		return big.NewInt(1)
	}
	if k < 0 || k > len(p.coeffs) {
		return new(big.Int)
	}
	return new(big.Int).Set(p.coeffs[k-1])
}

// Trace is the sum of the roots, -c₁.
func (p Polynomial) Trace() *big.Int {
	if len(p.coeffs) == 0 {
		return new(big.Int)
	}
	return new(big.Int).Neg(p.coeffs[0])
}

// Determinant is the product of the roots, (-1)ⁿcₙ.
func (p Polynomial) Determinant() *big.Int {
	n := len(p.coeffs)
	if n == 0 {
		return big.NewInt(1)
	}
	d := new(big.Int).Set(p.coeffs[n-1])
	if n%2 == 1 {
		d.Neg(d)
	}
	return d
}

// Eval evaluates p at an integer point.
func (p Polynomial) Eval(x *big.Int) *big.Int {
	acc := big.NewInt(1)
	for _, c := range p.coeffs {
		acc.Mul(acc, x)
		acc.Add(acc, c)
	}
	return acc
}

func (p Polynomial) Equal(o Polynomial) bool {
	if len(p.coeffs) != len(o.coeffs) {
		return false
	}
	for i := range p.coeffs {
		if p.coeffs[i].Cmp(o.coeffs[i]) != 0 {
			return false
		}
	}
	return true
}

// Key is a stable string usable as a map key for grouping.
func (p Polynomial) Key() string {
	parts := make([]string, len(p.coeffs)+1)
	parts[0] = "1"
	for i, c := range p.coeffs {
		parts[i+1] = c.String()
	}
	return strings.Join(parts, ",")
}

// Int64s returns the coefficients c₀..cₙ as int64, and false if any of
// them overflows.
func (p Polynomial) Int64s() ([]int64, bool) {
	out := make([]int64, len(p.coeffs)+1)
	out[0] = 1
	for i, c := range p.coeffs {
		if !c.IsInt64() {
			return nil, false
		}
		out[i+1] = c.Int64()
	}
	return out, true
}

// String renders p in descending powers, e.g. "λ^4 - 3λ^2 + 1".
func (p Polynomial) String() string {
	n := len(p.coeffs)
	var sb strings.Builder
	sb.WriteString(monomial(n))
	if n == 0 {
		sb.WriteString("1")
	}
	for k, c := range p.coeffs {
		if c.Sign() == 0 {
			continue
		}
		deg := n - k - 1
		abs := new(big.Int).Abs(c)
		if c.Sign() < 0 {
			sb.WriteString(" - ")
		} else {
			sb.WriteString(" + ")
		}
		if deg == 0 || abs.Cmp(big.NewInt(1)) != 0 {
			sb.WriteString(abs.String())
		}
		sb.WriteString(monomial(deg))
	}
	return sb.String()
}

func monomial(deg int) string {
	switch deg {
	case 0:
		return ""
	case 1:
		return "λ"
	default:
		return fmt.Sprintf("λ^%d", deg)
	}
}

// EvenReduce rewrites a polynomial with only even-offset coefficients as
// p(λ) = λ^shift · q(λ²). It reports false when some odd-index coefficient
// is non-zero, which never happens for a skew-symmetric matrix.
func (p Polynomial) EvenReduce() (q Polynomial, shift int, ok bool) {
	n := len(p.coeffs)
	for k := 1; k <= n; k += 2 {
		if p.coeffs[k-1].Sign() != 0 {
			return Polynomial{}, 0, false
		}
	}
	shift = n % 2
	var out []*big.Int
	for k := 2; k <= n; k += 2 {
		out = append(out, p.coeffs[k-1])
	}
	return NewPolynomial(out...), shift, true
}

// IntegerRoots strips every integer root from p by exact synthetic
// division. For a monic integer polynomial these are all of its rational
// roots. Roots are returned once per multiplicity; rest is the deflated
// polynomial.
func IntegerRoots(p Polynomial) (roots []*big.Int, rest Polynomial) {
	cur := p.Coefficients()
	for len(cur) > 0 {
		if cur[len(cur)-1].Sign() == 0 {
			roots = append(roots, new(big.Int))
			cur = cur[:len(cur)-1]
			continue
		}
		r := findIntegerRoot(cur)
		if r == nil {
			break
		}
		roots = append(roots, r)
		cur = deflate(cur, r)
	}
	return roots, Polynomial{coeffs: cur}
}

// maxIntegerRootSearch caps the candidate scan in findIntegerRoot. Integer
// roots larger than this stay in the deflated remainder, so a caller asking
// whether a spectrum is entirely integral gets a conservative answer.
const maxIntegerRootSearch = 1 << 20

// rootBound bounds the modulus of every root of the monic polynomial with
// coefficients c by Fujiwara's 2·max |cₖ|^(1/k), rounded up to a power of
// two from the coefficient bit lengths. It saturates at limit.
func rootBound(c []*big.Int, limit int64) int64 {
	e := 0
	for i, ck := range c {
		k := i + 1
		e = max(e, (ck.BitLen()+k-1)/k)
	}
	if e+1 >= 62 {
		return limit
	}
	return min(int64(1)<<(e+1), limit)
}

// findIntegerRoot scans divisors of the constant term up to the root bound,
// itself capped at maxIntegerRootSearch.
func findIntegerRoot(cur []*big.Int) *big.Int {
	p := Polynomial{coeffs: cur}
	last := new(big.Int).Abs(cur[len(cur)-1])
	bound := rootBound(cur, maxIntegerRootSearch)
	if last.IsInt64() {
		bound = min(bound, last.Int64())
	}
	d, rem := new(big.Int), new(big.Int)
	for i := int64(1); i <= bound; i++ {
		d.SetInt64(i)
		if rem.Rem(last, d).Sign() != 0 {
			continue
		}
		for _, x := range [2]*big.Int{big.NewInt(i), big.NewInt(-i)} {
			if p.Eval(x).Sign() == 0 {
				return x
			}
		}
	}
	return nil
}

// deflate divides λⁿ + c₁λⁿ⁻¹ + … + cₙ by (λ - r); r must be a root.
func deflate(c []*big.Int, r *big.Int) []*big.Int {
	out := make([]*big.Int, len(c)-1)
	acc := big.NewInt(1)
	for i := 0; i < len(out); i++ {
		acc = new(big.Int).Add(new(big.Int).Mul(acc, r), c[i])
		out[i] = acc
	}
	return out
}
