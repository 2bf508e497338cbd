package graph

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Spec is the on-disk YAML form of a graph.
//
//	name: chain
//	vertices: [m1, k1, m2]
//	edges:
//	  - {from: m1, to: k1, sign: 1}
//	  - {from: m2, to: k1}
//
// Vertices may be omitted, in which case they are taken from the edges in
// order of first appearance. A missing sign means +1.
type Spec struct {
	Name      string     `yaml:"name,omitempty"`
	Vertices  []string   `yaml:"vertices,omitempty"`
	Edges     []EdgeSpec `yaml:"edges"`
	Stiffness []string   `yaml:"stiffness,omitempty"`
}

type EdgeSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
	Sign int    `yaml:"sign,omitempty"`
}

// Build validates the spec and returns the graph it describes.
func (s Spec) Build() (*Graph, error) {
	vertices := s.Vertices
	if len(vertices) == 0 {
		seen := make(map[string]bool)
		for _, e := range s.Edges {
			for _, id := range []string{e.From, e.To} {
				if !seen[id] {
					seen[id] = true
					vertices = append(vertices, id)
				}
			}
		}
	}

	edges := make([]Edge, len(s.Edges))
	for i, e := range s.Edges {
		sign := e.Sign
		if sign == 0 {
			sign = 1
		}
		edges[i] = Edge{U: e.From, V: e.To, Sign: sign}
	}
	return New(vertices, edges)
}

// Partition returns the role assignment declared by the spec, or nil when the
// spec leaves it to the auditor.
func (s Spec) Partition(g *Graph) (*Partition, error) {
	if len(s.Stiffness) == 0 {
		return nil, nil
	}
	return PartitionByID(g, s.Stiffness)
}

// SpecOf captures g in its YAML form.
func SpecOf(name string, g *Graph) Spec {
	s := Spec{Name: name, Vertices: g.Vertices()}
	for _, e := range g.edges {
		s.Edges = append(s.Edges, EdgeSpec{From: e.U, To: e.V, Sign: e.Sign})
	}
	return s
}

func Decode(r io.Reader) (Spec, error) {
	var s Spec
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Spec{}, fmt.Errorf("decode graph: %w", err)
	}
	return s, nil
}

func Load(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, err
	}
	return Decode(bytes.NewReader(data))
}

func Save(path string, s Spec) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
