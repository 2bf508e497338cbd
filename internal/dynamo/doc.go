// Package dynamo provides the core primitives shared by the simulation side
// of phnet.
//
// The package defines the fundamental types for linear port-Hamiltonian
// dynamics ẋ = Jx:
//
//   - [State]: vector representing the network state (one entry per vertex)
//   - [System]: interface for ODE right-hand sides
//   - [Hamiltonian]: systems that expose a conserved energy
//   - [Energy]: the uniform-parameter Hamiltonian H(x) = ½‖x‖²
//
// # Thread Safety
//
// State values are plain slices. Nothing in this package holds shared
// mutable state, so independent simulations may run concurrently.
package dynamo
