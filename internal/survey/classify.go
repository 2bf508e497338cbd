package survey

import (
	"math"

	"github.com/san-kum/phnet/internal/spectral"
)

type Category string

const (
	CategoryZero          Category = "zero"
	CategoryPureImaginary Category = "pure_imaginary"
	CategoryReal          Category = "real"
	CategoryComplex       Category = "complex"
)

// categoryTolerance is relative to max(ρ, 1).
const categoryTolerance = 1e-9

func classify(v spectral.Eigenvalue, rho float64) Category {
	tol := categoryTolerance * math.Max(rho, 1)
	switch {
	case v.Abs() <= tol:
		return CategoryZero
	case math.Abs(v.Re) <= tol:
		return CategoryPureImaginary
	case math.Abs(v.Im) <= tol:
		return CategoryReal
	default:
		return CategoryComplex
	}
}

// IsAnalytic reports whether the roots of p have a closed form: p must be
// even up to a factor λ, p(λ) = λ^s·q(λ²), and q must reduce to degree at
// most two once its integer roots are divided out. Each remaining root is
// then ±√μ with μ from the quadratic formula.
func IsAnalytic(p spectral.Polynomial) bool {
	q, _, ok := p.EvenReduce()
	if !ok {
		return false
	}
	_, rest := spectral.IntegerRoots(q)
	return rest.Degree() <= 2
}

// Position places a spectrum in the universe view:
// X = 8n, Y = 15ρ, Z = 8(E - 8).
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

const (
	nScale       = 8.0
	rhoScale     = 15.0
	energyScale  = 8.0
	energyCenter = 8.0
)

func UniversePosition(n int, rho, energy float64) Position {
	return Position{
		X: float64(n) * nScale,
		Y: rho * rhoScale,
		Z: (energy - energyCenter) * energyScale,
	}
}
