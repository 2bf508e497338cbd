// Package matrix turns a graph.Graph into the matrices the rest of phnet
// works with.
//
//   - [Build]: adjacency A (symmetric 0/1), structure J (skew-symmetric ±1)
//     and the degree sequence
//   - [BuildIncidence]: the p×q incidence matrix B of a bipartite network
//   - [EdgeList]: O(m) evaluation of y = Jx straight from the edge list
//   - [Format], [FormatDense]: human-readable text for debugging
//
// Integer matrices stay exact ([IntMatrix]); [IntMatrix.Dense] is the bridge
// to gonum for the numerical packages.
package matrix
