// Package metrics holds sample observers that summarize a trajectory into a
// single number each. They plug into sim.Simulator.
package metrics
