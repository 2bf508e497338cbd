package spectral

import "math/big"

// ratPoly holds rational coefficients in ascending order: r[i] multiplies xⁱ.
// The zero polynomial is the empty slice.
type ratPoly []*big.Rat

func ratFromPolynomial(p Polynomial) ratPoly {
	n := p.Degree()
	r := make(ratPoly, n+1)
	r[n] = big.NewRat(1, 1)
	for k, c := range p.coeffs {
		r[n-k-1] = new(big.Rat).SetInt(c)
	}
	return r.trim()
}

func (r ratPoly) trim() ratPoly {
	for len(r) > 0 && r[len(r)-1].Sign() == 0 {
		r = r[:len(r)-1]
	}
	return r
}

func (r ratPoly) deg() int { return len(r) - 1 }

func (r ratPoly) lead() *big.Rat { return r[len(r)-1] }

func (r ratPoly) derivative() ratPoly {
	if len(r) < 2 {
		return nil
	}
	out := make(ratPoly, len(r)-1)
	for i := 1; i < len(r); i++ {
		out[i-1] = new(big.Rat).Mul(r[i], big.NewRat(int64(i), 1))
	}
	return out.trim()
}

func (r ratPoly) sub(o ratPoly) ratPoly {
	n := max(len(r), len(o))
	out := make(ratPoly, n)
	for i := range out {
		out[i] = new(big.Rat)
		if i < len(r) {
			out[i].Add(out[i], r[i])
		}
		if i < len(o) {
			out[i].Sub(out[i], o[i])
		}
	}
	return out.trim()
}

func (r ratPoly) monic() ratPoly {
	if len(r) == 0 {
		return r
	}
	inv := new(big.Rat).Inv(r.lead())
	out := make(ratPoly, len(r))
	for i, c := range r {
		out[i] = new(big.Rat).Mul(c, inv)
	}
	return out
}

// divmod performs polynomial long division; d must be non-zero.
func (r ratPoly) divmod(d ratPoly) (q, rem ratPoly) {
	rem = make(ratPoly, len(r))
	for i, c := range r {
		rem[i] = new(big.Rat).Set(c)
	}
	if len(r) < len(d) {
		return nil, rem.trim()
	}
	q = make(ratPoly, len(r)-len(d)+1)
	for i := range q {
		q[i] = new(big.Rat)
	}
	lead := d.lead()
	var t big.Rat
	for rem = rem.trim(); len(rem) >= len(d); rem = rem.trim() {
		shift := len(rem) - len(d)
		f := new(big.Rat).Quo(rem.lead(), lead)
		q[shift] = f
		for i, c := range d {
			t.Mul(f, c)
			rem[i+shift].Sub(rem[i+shift], &t)
		}
	}
	return q.trim(), rem
}

func ratGCD(a, b ratPoly) ratPoly {
	for len(b) > 0 {
		_, r := a.divmod(b)
		a, b = b, r
	}
	return a.monic()
}

// squareFree runs Yun's algorithm. factors[i] is the monic product of the
// linear factors of f with multiplicity exactly i+1; trailing entries may be
// the constant 1.
func squareFree(f ratPoly) []ratPoly {
	if f.deg() < 1 {
		return nil
	}
	df := f.derivative()
	a0 := ratGCD(f, df)
	b, _ := f.divmod(a0)
	c, _ := df.divmod(a0)
	d := c.sub(b.derivative())

	var factors []ratPoly
	for b.deg() > 0 {
		a := ratGCD(b, d)
		factors = append(factors, a)
		b, _ = b.divmod(a)
		c, _ = d.divmod(a)
		d = c.sub(b.derivative())
	}
	return factors
}

func (r ratPoly) float64s() []float64 {
	out := make([]float64, len(r))
	for i, c := range r {
		out[i], _ = c.Float64()
	}
	return out
}
