package survey

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/phnet/internal/matrix"
	"github.com/san-kum/phnet/internal/spectral"
)

// MaxVertices bounds n; K₈ already has 2^28 edge subsets.
const MaxVertices = 7

type Options struct {
	// Workers bounds concurrent polynomial and root computations; zero
	// means GOMAXPROCS.
	Workers int
	// IncludeAll keeps groups without a closed-form spectrum.
	IncludeAll bool
	Roots      spectral.Options
	Logger     *zap.Logger
}

func DefaultOptions() Options {
	return Options{Roots: spectral.DefaultOptions()}
}

type Eigenvalue struct {
	Re           float64  `json:"re"`
	Im           float64  `json:"im"`
	Multiplicity int      `json:"multiplicity"`
	Category     Category `json:"category"`
}

// Entry describes one polynomial group through its first graph.
type Entry struct {
	N           int          `json:"n"`
	Edges       []Edge       `json:"edges"`
	EdgeString  string       `json:"edge_string"`
	EdgeCount   int          `json:"edge_count"`
	Polynomial  string       `json:"polynomial"`
	Eigenvalues []Eigenvalue `json:"eigenvalues"`
	Analytic    bool         `json:"analytic"`
	Family      string       `json:"family,omitempty"`
	// ClassSize counts the fingerprint classes sharing the polynomial.
	ClassSize      int      `json:"class_size"`
	SpectralRadius float64  `json:"spectral_radius"`
	Energy         float64  `json:"energy"`
	Position       Position `json:"position"`
	Consistent     bool     `json:"consistent"`

	poly spectral.Polynomial
}

type Result struct {
	N            int           `json:"n"`
	EdgeSets     int           `json:"edge_sets"`
	UniqueGraphs int           `json:"unique_graphs"`
	Polynomials  int           `json:"polynomials"`
	Analytic     int           `json:"analytic"`
	Entries      []Entry       `json:"entries"`
	Elapsed      time.Duration `json:"elapsed"`
}

type candidate struct {
	edges []Edge
	poly  spectral.Polynomial
}

// Run surveys all graphs on n vertices. Entries are sorted by edge count,
// then polynomial.
func Run(ctx context.Context, n int, opts Options) (*Result, error) {
	if n < 1 || n > MaxVertices {
		return nil, fmt.Errorf("survey: n must be in [1, %d], got %d", MaxVertices, n)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	start := time.Now()

	res := &Result{N: n}
	seen := make(map[string]bool)
	var cands []*candidate
	var ctxErr error
	forEachEdgeSet(allPairs(n), func(edges []Edge) bool {
		res.EdgeSets++
		if res.EdgeSets%4096 == 0 {
			if ctxErr = ctx.Err(); ctxErr != nil {
				return false
			}
		}
		fp := Fingerprint(n, edges)
		if seen[fp] {
			return true
		}
		seen[fp] = true
		cands = append(cands, &candidate{edges: slices.Clone(edges)})
		return true
	})
	if ctxErr != nil {
		return nil, ctxErr
	}
	res.UniqueGraphs = len(cands)
	logger.Debug("enumerated graphs", zap.Int("n", n), zap.Int("edge_sets", res.EdgeSets), zap.Int("unique", res.UniqueGraphs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, c := range cands {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			p, err := spectral.CharacteristicPolynomial(SkewMatrix(n, c.edges))
			if err != nil {
				return fmt.Errorf("survey: graph %s: %w", EdgeString(c.edges), err)
			}
			c.poly = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	order := make([]string, 0)
	groups := make(map[string][]*candidate)
	for _, c := range cands {
		key := c.poly.Key()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], c)
	}
	res.Polynomials = len(order)

	entries := make([]*Entry, len(order))
	g, gCtx = errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, key := range order {
		members := groups[key]
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			e, err := analyze(n, members, opts)
			if err != nil {
				return err
			}
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.Analytic {
			res.Analytic++
		}
		if e.Analytic || opts.IncludeAll {
			res.Entries = append(res.Entries, *e)
		}
	}
	slices.SortFunc(res.Entries, func(a, b Entry) int {
		return cmp.Or(cmp.Compare(a.EdgeCount, b.EdgeCount), cmp.Compare(a.Polynomial, b.Polynomial))
	})
	res.Elapsed = time.Since(start)

	logger.Info("survey finished",
		zap.Int("n", n),
		zap.Int("unique_graphs", res.UniqueGraphs),
		zap.Int("polynomials", res.Polynomials),
		zap.Int("analytic", res.Analytic),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

func analyze(n int, members []*candidate, opts Options) (*Entry, error) {
	rep := members[0]
	rootOpts := opts.Roots
	rootOpts.Symmetry = spectral.SymmetrySkew
	set, err := spectral.Roots(rep.poly, rootOpts)
	if err != nil {
		return nil, fmt.Errorf("survey: roots of %s: %w", rep.poly, err)
	}

	rho := set.SpectralRadius()
	energy := set.Energy()
	e := &Entry{
		N:              n,
		Edges:          rep.edges,
		EdgeString:     EdgeString(rep.edges),
		EdgeCount:      len(rep.edges),
		Polynomial:     rep.poly.String(),
		Analytic:       IsAnalytic(rep.poly),
		Family:         IdentifyFamily(n, rep.edges),
		ClassSize:      len(members),
		SpectralRadius: rho,
		Energy:         energy,
		Position:       UniversePosition(n, rho, energy),
		Consistent:     set.Consistent(),
		poly:           rep.poly,
	}
	for _, v := range set.Values {
		e.Eigenvalues = append(e.Eigenvalues, Eigenvalue{
			Re:           v.Re,
			Im:           v.Im,
			Multiplicity: v.Multiplicity,
			Category:     classify(v, rho),
		})
	}
	return e, nil
}

// SkewMatrix orients every edge i<j as +1 from i to j.
func SkewMatrix(n int, edges []Edge) *matrix.IntMatrix {
	m := matrix.NewInt(n, n)
	for _, e := range edges {
		m.Set(e[0], e[1], 1)
		m.Set(e[1], e[0], -1)
	}
	return m
}

// WriteJSON exports the result as indented JSON.
func (r *Result) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Poly returns the exact polynomial of the entry.
func (e *Entry) Poly() spectral.Polynomial { return e.poly }
