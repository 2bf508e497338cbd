package matrix

import "errors"

var (
	// ErrNotBipartite is returned by BuildIncidence when an edge joins two
	// vertices on the same side of the partition.
	ErrNotBipartite = errors.New("matrix: graph is not bipartite under the partition")

	// ErrInvalidPartition indicates a partition that does not cover the graph.
	ErrInvalidPartition = errors.New("matrix: partition does not match graph")

	// ErrDimensionMismatch indicates incompatible shapes.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")
)
