// Package integrators advances ẋ = Jx for a skew-symmetric structure matrix J.
//
// Structure-preserving methods:
//
//   - [Rodrigues]: exact flow exp(Jt) from a real modal basis of J
//   - [Cayley]: Padé(1,1) map (I - hJ/2)⁻¹(I + hJ/2), dense LU or sparse CGNR
//   - Trapezoidal: the Cayley map under its textbook name
//
// Baselines for comparison, which do not preserve energy: [RK4] (decays),
// [Euler] (grows) and [Leapfrog] (symplectic, bounded oscillation, bipartite
// networks only).
//
// Steppers are driven by a [Trajectory], a pull-based sequence of samples.
// Nothing advances until the caller asks for the next sample.
package integrators
