// Package audit decides whether a signed graph describes a realizable
// mass-spring (or LC) network and repairs the violations that a sign flip
// can fix.
package audit

import (
	"errors"
	"fmt"

	"github.com/san-kum/phnet/internal/graph"
	"github.com/san-kum/phnet/internal/matrix"
)

// ErrStaleReport is returned by Rectify when the report was produced for a
// different graph.
var ErrStaleReport = errors.New("audit: report does not match graph")

type Kind string

const (
	NotBipartite  Kind = "NotBipartite"
	Isolated      Kind = "Isolated"
	SignMismatch  Kind = "SignMismatch"
	OverConnected Kind = "OverConnected"
)

type Status string

const (
	StatusGreen  Status = "green"
	StatusOrange Status = "orange"
	// StatusRed marks a graph with an odd cycle; no partition exists.
	StatusRed Status = "red"
)

// Violation is one reason a graph is not physical.
type Violation struct {
	Kind Kind `json:"kind"`
	// Vertex is the stiffness vertex owning the column, or an endpoint of the
	// offending edge for NotBipartite.
	Vertex string `json:"vertex"`
	// Edges are graph edge indices involved in the violation.
	Edges   []int  `json:"edges"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Message)
}

type Summary struct {
	NodeCount      int `json:"node_count"`
	EdgeCount      int `json:"edge_count"`
	StateSpaceDim  int `json:"state_space_dim"`
	InertiaCount   int `json:"inertia_count"`
	StiffnessCount int `json:"stiffness_count"`
	GroundedCount  int `json:"grounded_count"`
}

// Report is the outcome of an audit. Partition and Incidence are set when the
// graph is bipartite under the partition used.
type Report struct {
	IsPhysical bool        `json:"is_physical"`
	Status     Status      `json:"status"`
	Violations []Violation `json:"violations"`
	// Grounded lists stiffness vertices with a single connection.
	Grounded []string `json:"grounded"`
	Summary  Summary  `json:"summary"`

	Partition *graph.Partition  `json:"-"`
	Incidence *matrix.Incidence `json:"-"`

	// supplied is true when the partition came from the caller.
	supplied bool
}

// Count returns the number of violations of the given kind.
func (r *Report) Count(kind Kind) int {
	n := 0
	for _, v := range r.Violations {
		if v.Kind == kind {
			n++
		}
	}
	return n
}

func (r *Report) Has(kind Kind) bool { return r.Count(kind) > 0 }

// Repairable reports whether Rectify can make the graph fully physical.
func (r *Report) Repairable() bool {
	return !r.IsPhysical && r.Count(SignMismatch) == len(r.Violations)
}

func (r *Report) finish() {
	r.IsPhysical = len(r.Violations) == 0
	switch {
	case r.IsPhysical:
		r.Status = StatusGreen
	case r.Has(NotBipartite):
		r.Status = StatusRed
	default:
		r.Status = StatusOrange
	}
}
