// Package analysis inspects trajectories of ẋ = Jx after the fact.
//
//   - [PowerSpectrum], [DominantFrequency]: oscillation frequencies of a
//     sampled component, to be compared with the spectrum of J
//   - [SeparationRate], [SeparationSpectrum]: exponential growth of the
//     distance between nearby trajectories; zero for every orthogonal step
//   - [NewPhasePortrait]: two components plotted against each other
//   - [SweepSteps]: drift of one method over a range of step sizes
//
// # Conservation Check
//
// An exact or Cayley step is orthogonal, so two trajectories never move
// apart:
//
//	rate, _ := analysis.SeparationRate(stepper, x0, 0, 1e-6, 1000)
//	// |rate| is at rounding level; Euler gives a positive rate
package analysis
