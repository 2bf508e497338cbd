// Package viz renders phnet results for the terminal.
//
//   - Report renderers for audits, rectifications, polynomials, spectra and
//     method comparisons, styled with lipgloss.
//   - asciigraph plots of energy, drift and state components.
//   - [Watch]: a Bubble Tea view that pulls a trajectory one step per tick.
//
// # Watch key bindings
//
//	Space - Pause/Resume
//	R     - Rewind to x₀
//	+/-   - Steps per frame
//	T     - Cycle color themes
//	Q     - Quit
package viz
