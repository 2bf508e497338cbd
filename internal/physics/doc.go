// Package physics evaluates the physical quantities of a uniform-parameter
// port-Hamiltonian network ẋ = Jx.
//
//   - [Hamiltonian]: kinetic, potential and total energy under a partition
//   - [Divergence], [SparseDivergence]: per-vertex flow (Jx)ᵢ
//   - [PowerBalance]: Σ xᵢ·(Jx)ᵢ, zero for every skew-symmetric J
//   - [LinearSystem]: ẋ = Jx as a [dynamo.System] for generic integrators
//
// # Energy Conservation
//
// With unit masses and stiffnesses the Hamiltonian is H(x) = ½‖x‖² and
//
//	dH/dt = xᵀJx = 0
//
// because J = -Jᵀ. PowerBalance is that identity evaluated at one state.
package physics
