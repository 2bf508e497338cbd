package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/san-kum/phnet/internal/graph"
)

// GraphPreset is a named example network.
type GraphPreset struct {
	Description string
	Spec        graph.Spec
}

func edge(from, to string, sign int) graph.EdgeSpec {
	return graph.EdgeSpec{From: from, To: to, Sign: sign}
}

var Graphs = map[string]GraphPreset{
	"mass-spring-chain": {
		Description: "three masses joined by two springs, the first grounded",
		Spec: graph.Spec{
			Name:     "mass-spring-chain",
			Vertices: []string{"m1", "k0", "k1", "m2", "k2", "m3"},
			Edges: []graph.EdgeSpec{
				edge("m1", "k0", 1),
				edge("m1", "k1", 1), edge("k1", "m2", 1),
				edge("m2", "k2", 1), edge("k2", "m3", 1),
			},
			Stiffness: []string{"k0", "k1", "k2"},
		},
	},
	"lc-ladder": {
		Description: "LC ladder: inductors in series, capacitors to ground",
		Spec: graph.Spec{
			Name:     "lc-ladder",
			Vertices: []string{"L1", "C1", "L2", "C2", "L3", "C3"},
			Edges: []graph.EdgeSpec{
				edge("L1", "C1", 1), edge("C1", "L2", 1),
				edge("L2", "C2", 1), edge("C2", "L3", 1),
				edge("L3", "C3", 1),
			},
			Stiffness: []string{"C1", "C2", "C3"},
		},
	},
	"rotational-pair": {
		Description: "two flywheels on a torsion shaft, the first anchored",
		Spec: graph.Spec{
			Name:     "rotational-pair",
			Vertices: []string{"J1", "anchor", "shaft", "J2"},
			Edges: []graph.EdgeSpec{
				edge("J1", "anchor", 1),
				edge("J1", "shaft", 1), edge("shaft", "J2", 1),
			},
			Stiffness: []string{"anchor", "shaft"},
		},
	},
	"sign-mismatch": {
		Description: "chain whose springs push both masses the same way",
		Spec: graph.Spec{
			Name:     "sign-mismatch",
			Vertices: []string{"m1", "k1", "m2", "k2", "m3"},
			Edges: []graph.EdgeSpec{
				edge("m1", "k1", 1), edge("m2", "k1", 1),
				edge("m2", "k2", -1), edge("m3", "k2", -1),
			},
		},
	},
	"over-connected": {
		Description: "one spring coupling three masses",
		Spec: graph.Spec{
			Name:     "over-connected",
			Vertices: []string{"a", "k", "b", "c"},
			Edges:    []graph.EdgeSpec{edge("a", "k", 1), edge("k", "b", 1), edge("k", "c", 1)},
		},
	},
	"triangle": {
		Description: "odd cycle, not realizable as a two-role network",
		Spec: graph.Spec{
			Name:     "triangle",
			Vertices: []string{"a", "b", "c"},
			Edges:    []graph.EdgeSpec{edge("a", "b", 1), edge("b", "c", 1), edge("c", "a", 1)},
		},
	},
	"path4": {
		Description: "path on four vertices, eigenvalues 2cos(kπ/5)",
		Spec: graph.Spec{
			Name:     "path4",
			Vertices: []string{"a", "b", "c", "d"},
			Edges:    []graph.EdgeSpec{edge("a", "b", 1), edge("b", "c", 1), edge("c", "d", 1)},
		},
	},
	"k5": {
		Description: "complete graph on five vertices",
		Spec: graph.Spec{
			Name:     "k5",
			Vertices: []string{"a", "b", "c", "d", "e"},
			Edges: []graph.EdgeSpec{
				edge("a", "b", 1), edge("a", "c", 1), edge("a", "d", 1), edge("a", "e", 1),
				edge("b", "c", 1), edge("b", "d", 1), edge("b", "e", 1),
				edge("c", "d", 1), edge("c", "e", 1),
				edge("d", "e", 1),
			},
		},
	},
}

func ListGraphs() []string {
	names := make([]string, 0, len(Graphs))
	for name := range Graphs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ResolveGraph returns a preset by name, or loads the YAML file at ref.
func ResolveGraph(ref string) (graph.Spec, error) {
	if p, ok := Graphs[ref]; ok {
		return p.Spec, nil
	}
	if _, err := os.Stat(ref); err != nil {
		return graph.Spec{}, fmt.Errorf("config: %q is neither a preset nor a readable file", ref)
	}
	return graph.Load(ref)
}

// Presets are run settings per graph preset.
var Presets = map[string]map[string]*Config{
	"mass-spring-chain": {
		"exact": {
			Graph: "mass-spring-chain", Method: "rodrigues", Step: 0.05, Steps: 4000,
			InitState: InitStateConfig{Vertex: "m1", Amplitude: 1},
		},
		"cayley": {
			Graph: "mass-spring-chain", Method: "cayley", Step: 0.1, Steps: 2000,
			InitState: InitStateConfig{Vertex: "m1", Amplitude: 1},
		},
		"baseline": {
			Graph: "mass-spring-chain", Method: "rk4", Step: 0.1, Steps: 2000,
			InitState: InitStateConfig{Vertex: "m1", Amplitude: 1},
		},
	},
	"lc-ladder": {
		"ring": {
			Graph: "lc-ladder", Method: "cayley", Step: 0.05, Steps: 4000,
			InitState: InitStateConfig{Vertex: "C3", Amplitude: 1},
		},
		"sparse": {
			Graph: "lc-ladder", Method: "cayley", Sparse: true, Step: 0.05, Steps: 4000,
			InitState: InitStateConfig{Vertex: "C3", Amplitude: 1},
		},
		"leapfrog": {
			Graph: "lc-ladder", Method: "leapfrog", Step: 0.05, Steps: 4000,
			InitState: InitStateConfig{Vertex: "C3", Amplitude: 1},
		},
	},
	"rotational-pair": {
		"twist": {
			Graph: "rotational-pair", Method: "rodrigues", Step: 0.02, Steps: 5000,
			InitState: InitStateConfig{Vertex: "shaft", Amplitude: 0.5},
		},
		"noise": {
			Graph: "rotational-pair", Method: "trapezoidal", Step: 0.05, Steps: 2000, Seed: 7,
			InitState: InitStateConfig{Random: true},
		},
	},
}

// GetPreset returns the named run preset with defaults filled in, or nil.
func GetPreset(graphName, preset string) *Config {
	graphPresets, ok := Presets[graphName]
	if !ok {
		return nil
	}
	p, ok := graphPresets[preset]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Graph = p.Graph
	cfg.Method = p.Method
	cfg.Step = p.Step
	cfg.Steps = p.Steps
	cfg.Sparse = p.Sparse
	cfg.Seed = p.Seed
	cfg.InitState = p.InitState
	return cfg
}

func ListPresets(graphName string) []string {
	graphPresets, ok := Presets[graphName]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(graphPresets))
	for name := range graphPresets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
