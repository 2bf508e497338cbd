// Package spectral computes characteristic polynomials exactly and recovers
// eigenvalues from them.
//
// The polynomial is produced by the Faddeev–LeVerrier recurrence over
// math/big, so it is exact for any integer matrix. Roots are found by first
// splitting the polynomial into exact square-free factors (Yun's algorithm
// over the rationals), which fixes every multiplicity without tolerances, and
// then solving each factor through its companion matrix. The float64
// conversion of the factors is the only place precision is lost.
package spectral
