package spectral

import (
	"math"
	"math/big"
	"math/cmplx"
)

const (
	refineMaxIterations = 200
	// refineTargetBits is how many bits a correction must fall below,
	// relative to max(|z|, 1), before a root counts as converged.
	refineTargetBits = 80
	refineGuardBits  = 64
	seedOffset       = 1e-4
	goldenAngle      = 2.399963229728653
)

type bigComplex struct{ re, im *big.Float }

func newBigComplex(prec uint, z complex128) bigComplex {
	if cmplx.IsNaN(z) || cmplx.IsInf(z) {
		z = 0
	}
	return bigComplex{
		re: new(big.Float).SetPrec(prec).SetFloat64(real(z)),
		im: new(big.Float).SetPrec(prec).SetFloat64(imag(z)),
	}
}

func (z bigComplex) prec() uint { return z.re.Prec() }

func (z bigComplex) float() *big.Float { return new(big.Float).SetPrec(z.prec()) }

func (z bigComplex) isZero() bool { return z.re.Sign() == 0 && z.im.Sign() == 0 }

func (z bigComplex) add(w bigComplex) bigComplex {
	return bigComplex{re: z.float().Add(z.re, w.re), im: z.float().Add(z.im, w.im)}
}

func (z bigComplex) sub(w bigComplex) bigComplex {
	return bigComplex{re: z.float().Sub(z.re, w.re), im: z.float().Sub(z.im, w.im)}
}

func (z bigComplex) mul(w bigComplex) bigComplex {
	ac := z.float().Mul(z.re, w.re)
	bd := z.float().Mul(z.im, w.im)
	ad := z.float().Mul(z.re, w.im)
	bc := z.float().Mul(z.im, w.re)
	return bigComplex{re: ac.Sub(ac, bd), im: ad.Add(ad, bc)}
}

func (z bigComplex) abs2() *big.Float {
	rr := z.float().Mul(z.re, z.re)
	ii := z.float().Mul(z.im, z.im)
	return rr.Add(rr, ii)
}

// quo returns z/w; w must be non-zero.
func (z bigComplex) quo(w bigComplex) bigComplex {
	den := w.abs2()
	conj := bigComplex{re: w.re, im: z.float().Neg(w.im)}
	num := z.mul(conj)
	return bigComplex{re: num.re.Quo(num.re, den), im: num.im.Quo(num.im, den)}
}

func (z bigComplex) complex128() complex128 {
	re, _ := z.re.Float64()
	im, _ := z.im.Float64()
	return complex(re, im)
}

// refinePrecision grows with the coefficient size and the degree, the two
// things that decide how much cancellation evaluating f near a root costs.
func refinePrecision(f ratPoly) uint {
	bits := 0
	for _, c := range f {
		bits = max(bits, c.Num().BitLen(), c.Denom().BitLen())
	}
	return uint(refineGuardBits + 2*bits + 2*f.deg())
}

// evalBig returns f(z) and f'(z) for ascending coefficients c.
func evalBig(c []*big.Float, z bigComplex) (p, dp bigComplex) {
	prec := z.prec()
	p = newBigComplex(prec, 0)
	dp = newBigComplex(prec, 0)
	for i := len(c) - 1; i >= 0; i-- {
		dp = dp.mul(z).add(p)
		p = p.mul(z)
		p.re.Add(p.re, c[i])
	}
	return p, dp
}

// refineRoots runs Ehrlich-Aberth iterations on the exact square-free factor
// f in big.Float, starting from the companion-matrix roots. The seeds are
// nudged off their conjugate symmetry so a complex pair can still separate
// into two real roots. When the iteration does not settle, the seeds are
// returned unchanged.
func refineRoots(f ratPoly, seeds []complex128) []complex128 {
	d := f.deg()
	if d < 2 || len(seeds) != d {
		return seeds
	}
	prec := refinePrecision(f)
	c := make([]*big.Float, len(f))
	for i, r := range f {
		c[i] = new(big.Float).SetPrec(prec).SetRat(r)
	}

	scale := 1.0
	for _, s := range seeds {
		if a := cmplx.Abs(s); !math.IsNaN(a) && !math.IsInf(a, 0) {
			scale = math.Max(scale, a)
		}
	}
	z := make([]bigComplex, d)
	for k, s := range seeds {
		theta := float64(k+1) * goldenAngle
		s += complex(seedOffset*scale*math.Cos(theta), seedOffset*scale*math.Sin(theta))
		z[k] = newBigComplex(prec, s)
	}

	one := newBigComplex(prec, 1)
	eps2 := new(big.Float).SetPrec(prec).SetMantExp(big.NewFloat(1), -2*refineTargetBits)
	converged := make([]bool, d)
	for it := 0; it < refineMaxIterations; it++ {
		done := true
		for k := range z {
			if converged[k] {
				continue
			}
			p, dp := evalBig(c, z[k])
			if p.isZero() {
				converged[k] = true
				continue
			}
			if dp.isZero() {
				done = false
				continue
			}
			w := p.quo(dp)
			sum := newBigComplex(prec, 0)
			for j := range z {
				if j == k {
					continue
				}
				diff := z[k].sub(z[j])
				if diff.isZero() {
					continue
				}
				sum = sum.add(one.quo(diff))
			}
			corr := w
			if den := one.sub(w.mul(sum)); !den.isZero() {
				corr = w.quo(den)
			}
			z[k] = z[k].sub(corr)

			size := z[k].abs2()
			if size.Cmp(one.re) < 0 {
				size = one.re
			}
			limit := new(big.Float).SetPrec(prec).Mul(eps2, size)
			if corr.abs2().Cmp(limit) <= 0 {
				converged[k] = true
			} else {
				done = false
			}
		}
		if done {
			out := make([]complex128, d)
			for k := range z {
				out[k] = z[k].complex128()
			}
			return out
		}
	}
	return seeds
}
