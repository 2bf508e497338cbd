package audit_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/phnet/internal/audit"
	"github.com/san-kum/phnet/internal/graph"
	"github.com/san-kum/phnet/internal/matrix"
)

func e(u, v string, s int) graph.Edge { return graph.Edge{U: u, V: v, Sign: s} }

var _ = Describe("Audit", func() {
	It("accepts a consistently signed mass-spring chain", func() {
		// k0 grounds m1; k1 and k2 couple neighbouring masses
		g := graph.MustNew([]string{"m1", "k0", "k1", "m2", "k2", "m3"}, []graph.Edge{
			e("m1", "k0", 1),
			e("m1", "k1", 1), e("k1", "m2", 1),
			e("m2", "k2", 1), e("k2", "m3", 1),
		})
		r, err := audit.Audit(g)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.IsPhysical).To(BeTrue())
		Expect(r.Status).To(Equal(audit.StatusGreen))
		Expect(r.Violations).To(BeEmpty())
		Expect(r.Grounded).To(Equal([]string{"k0"}))
		Expect(r.Summary).To(Equal(audit.Summary{
			NodeCount: 6, EdgeCount: 5, StateSpaceDim: 6,
			InertiaCount: 3, StiffnessCount: 3, GroundedCount: 1,
		}))
		Expect(r.Partition.P).To(Equal([]int{0, 3, 5}))
		Expect(r.Incidence.Mat.Rows()).To(Equal(3))
		Expect(r.Incidence.Mat.Cols()).To(Equal(3))
	})

	It("reports a single NotBipartite violation for an odd cycle", func() {
		g := graph.MustNew([]string{"a", "b", "c"}, []graph.Edge{
			e("a", "b", 1), e("b", "c", 1), e("c", "a", 1),
		})
		r, err := audit.Audit(g)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.IsPhysical).To(BeFalse())
		Expect(r.Status).To(Equal(audit.StatusRed))
		Expect(r.Violations).To(HaveLen(1))
		Expect(r.Violations[0].Kind).To(Equal(audit.NotBipartite))
		Expect(r.Violations[0].Edges).To(HaveLen(1))
		Expect(r.Partition).To(BeNil())
		Expect(r.Incidence).To(BeNil())
	})

	It("flags two equal signs in one column as SignMismatch", func() {
		g := graph.MustNew([]string{"m1", "k1", "m2"}, []graph.Edge{
			e("m1", "k1", 1), e("m2", "k1", 1),
		})
		r, err := audit.Audit(g)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Status).To(Equal(audit.StatusOrange))
		Expect(r.Count(audit.SignMismatch)).To(Equal(1))
		Expect(r.Violations[0].Vertex).To(Equal("k1"))
		Expect(r.Violations[0].Edges).To(ConsistOf(0, 1))
		Expect(r.Repairable()).To(BeTrue())
	})

	It("flags a spring touching three masses as OverConnected", func() {
		g := graph.MustNew([]string{"a", "k", "b", "c"}, []graph.Edge{
			e("a", "k", 1), e("k", "b", 1), e("k", "c", 1),
		})
		r, err := audit.Audit(g)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Status).To(Equal(audit.StatusOrange))
		Expect(r.Violations).To(HaveLen(1))
		Expect(r.Violations[0].Kind).To(Equal(audit.OverConnected))
		Expect(r.Repairable()).To(BeFalse())
	})

	It("puts isolated vertices on the inertia side", func() {
		g := graph.MustNew([]string{"lone", "m", "k"}, []graph.Edge{e("m", "k", 1)})
		r, err := audit.Audit(g)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.IsPhysical).To(BeTrue())
		Expect(r.Partition.Side(0)).To(Equal(graph.Inertia))
	})

	It("rejects a nil graph", func() {
		_, err := audit.Audit(nil)
		Expect(err).To(MatchError(graph.ErrInvalidGraph))
	})

	It("is physical exactly when every column is grounded or balanced", func() {
		rng := rand.New(rand.NewSource(3))
		for trial := 0; trial < 200; trial++ {
			g := randomBipartite(rng)
			r, err := audit.Audit(g)
			Expect(err).NotTo(HaveOccurred())

			valid := true
			for j := range r.Incidence.Cols {
				nz := r.Incidence.ColumnNonzeros(j)
				switch {
				case len(nz) == 1:
				case len(nz) == 2 && nz[0]+nz[1] == 0:
				default:
					valid = false
				}
			}
			Expect(r.IsPhysical).To(Equal(valid))
		}
	})
})

var _ = Describe("AuditPartition", func() {
	var g *graph.Graph

	BeforeEach(func() {
		g = graph.MustNew([]string{"m1", "k1", "m2", "k2"}, []graph.Edge{
			e("m1", "k1", 1), e("k1", "m2", 1),
		})
	})

	It("reports an unconnected spring as Isolated", func() {
		p, err := graph.PartitionByID(g, []string{"k1", "k2"})
		Expect(err).NotTo(HaveOccurred())
		r, err := audit.AuditPartition(g, p)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Status).To(Equal(audit.StatusOrange))
		Expect(r.Violations).To(HaveLen(1))
		Expect(r.Violations[0].Kind).To(Equal(audit.Isolated))
		Expect(r.Violations[0].Vertex).To(Equal("k2"))
	})

	It("reports every edge inside one side", func() {
		p, err := graph.PartitionByID(g, nil)
		Expect(err).NotTo(HaveOccurred())
		r, err := audit.AuditPartition(g, p)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Status).To(Equal(audit.StatusRed))
		Expect(r.Count(audit.NotBipartite)).To(Equal(2))
		Expect(r.Incidence).To(BeNil())
	})

	It("rejects a partition of the wrong size", func() {
		_, err := audit.AuditPartition(g, graph.NewPartition([]graph.Side{graph.Inertia}))
		Expect(err).To(MatchError(matrix.ErrInvalidPartition))
	})
})

var _ = Describe("Rectify", func() {
	mismatched := func() *graph.Graph {
		return graph.MustNew([]string{"m1", "k1", "m2", "k2", "m3"}, []graph.Edge{
			e("m1", "k1", 1), e("m2", "k1", 1),
			e("m2", "k2", -1), e("m3", "k2", -1),
		})
	}

	It("flips the edge with the higher inertia endpoint in each column", func() {
		g := mismatched()
		r, err := audit.Audit(g)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Count(audit.SignMismatch)).To(Equal(2))

		fix, err := audit.Rectify(g, r)
		Expect(err).NotTo(HaveOccurred())
		Expect(fix.Flipped).To(Equal([]int{1, 3}))
		Expect(fix.Complete).To(BeTrue())
		Expect(fix.Report.Status).To(Equal(audit.StatusGreen))
		Expect(fix.Original).To(BeIdenticalTo(g))
		Expect(fix.Graph.Edge(1).Sign).To(Equal(-1))
		Expect(fix.Graph.Edge(3).Sign).To(Equal(1))
		Expect(g.Edge(1).Sign).To(Equal(1), "input graph untouched")
	})

	It("is idempotent", func() {
		g := mismatched()
		r, _ := audit.Audit(g)
		first, err := audit.Rectify(g, r)
		Expect(err).NotTo(HaveOccurred())

		second, err := audit.Rectify(first.Graph, first.Report)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Flipped).To(BeEmpty())
		Expect(second.Graph.Edges()).To(Equal(first.Graph.Edges()))
	})

	It("leaves unrepairable violations and reports partial success", func() {
		g := graph.MustNew([]string{"m1", "k1", "m2", "k2", "a", "b"}, []graph.Edge{
			e("m1", "k1", 1), e("m2", "k1", 1),
			e("m1", "k2", 1), e("a", "k2", 1), e("b", "k2", -1),
		})
		r, err := audit.Audit(g)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Repairable()).To(BeFalse())

		fix, err := audit.Rectify(g, r)
		Expect(err).NotTo(HaveOccurred())
		Expect(fix.Flipped).To(HaveLen(1))
		Expect(fix.Complete).To(BeFalse())
		Expect(fix.Report.Violations).To(HaveLen(1))
		Expect(fix.Report.Violations[0].Kind).To(Equal(audit.OverConnected))
	})

	It("does nothing for a non-bipartite graph", func() {
		g := graph.MustNew([]string{"a", "b", "c"}, []graph.Edge{
			e("a", "b", 1), e("b", "c", 1), e("c", "a", 1),
		})
		r, _ := audit.Audit(g)
		fix, err := audit.Rectify(g, r)
		Expect(err).NotTo(HaveOccurred())
		Expect(fix.Flipped).To(BeEmpty())
		Expect(fix.Report.Status).To(Equal(audit.StatusRed))
	})

	It("keeps a caller-supplied partition", func() {
		g := graph.MustNew([]string{"m1", "k1", "m2", "k2"}, []graph.Edge{
			e("m1", "k1", 1), e("m2", "k1", 1),
		})
		p, _ := graph.PartitionByID(g, []string{"k1", "k2"})
		r, err := audit.AuditPartition(g, p)
		Expect(err).NotTo(HaveOccurred())

		fix, err := audit.Rectify(g, r)
		Expect(err).NotTo(HaveOccurred())
		Expect(fix.Flipped).To(Equal([]int{1}))
		Expect(fix.Report.Count(audit.Isolated)).To(Equal(1))
		Expect(fix.Report.Partition).To(BeIdenticalTo(p))
	})

	It("rejects a report for another graph", func() {
		r, _ := audit.Audit(mismatched())
		other := graph.MustNew([]string{"x", "y"}, []graph.Edge{e("x", "y", 1)})
		_, err := audit.Rectify(other, r)
		Expect(err).To(MatchError(audit.ErrStaleReport))

		_, err = audit.Rectify(other, nil)
		Expect(err).To(MatchError(audit.ErrStaleReport))
	})
})

func randomBipartite(rng *rand.Rand) *graph.Graph {
	np, nq := 1+rng.Intn(4), 1+rng.Intn(4)
	var vs []string
	for i := 0; i < np; i++ {
		vs = append(vs, string(rune('A'+i)))
	}
	for j := 0; j < nq; j++ {
		vs = append(vs, string(rune('a'+j)))
	}
	var es []graph.Edge
	for i := 0; i < np; i++ {
		for j := 0; j < nq; j++ {
			if rng.Intn(2) == 0 {
				continue
			}
			s := 1
			if rng.Intn(2) == 0 {
				s = -1
			}
			es = append(es, e(vs[i], vs[np+j], s))
		}
	}
	return graph.MustNew(vs, es)
}
