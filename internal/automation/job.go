package automation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/phnet/internal/audit"
	"github.com/san-kum/phnet/internal/config"
	"github.com/san-kum/phnet/internal/dynamo"
	"github.com/san-kum/phnet/internal/graph"
	"github.com/san-kum/phnet/internal/integrators"
	"github.com/san-kum/phnet/internal/matrix"
	"github.com/san-kum/phnet/internal/metrics"
	"github.com/san-kum/phnet/internal/observability"
	"github.com/san-kum/phnet/internal/sim"
	"github.com/san-kum/phnet/internal/storage"
)

// Job is a simulation ready to start.
type Job struct {
	Name      string
	Spec      graph.Spec
	Graph     *graph.Graph
	Partition *graph.Partition
	Report    *audit.Report
	Matrices  *matrix.Matrices
	Edges     *matrix.EdgeList
	Method    integrators.Method
	Stepper   integrators.Stepper
	X0        dynamo.State
	Config    *config.Config
}

// LoadGraph resolves a preset name or graph file with its partition.
func LoadGraph(ref string) (graph.Spec, *graph.Graph, *graph.Partition, error) {
	spec, err := config.ResolveGraph(ref)
	if err != nil {
		return graph.Spec{}, nil, nil, err
	}
	return buildSpec(spec)
}

func buildSpec(spec graph.Spec) (graph.Spec, *graph.Graph, *graph.Partition, error) {
	g, err := spec.Build()
	if err != nil {
		return graph.Spec{}, nil, nil, err
	}
	part, err := spec.Partition(g)
	if err != nil {
		return graph.Spec{}, nil, nil, err
	}
	return spec, g, part, nil
}

// AuditGraph uses the declared partition when there is one.
func AuditGraph(g *graph.Graph, part *graph.Partition) (*audit.Report, error) {
	var (
		r   *audit.Report
		err error
	)
	if part != nil {
		r, err = audit.AuditPartition(g, part)
	} else {
		r, err = audit.Audit(g)
	}
	if err == nil {
		observability.RecordAudit(string(r.Status))
	}
	return r, err
}

// Prepare validates cfg and builds everything a run of cfg.Graph needs.
// Non-physical graphs are still prepared; the report says why.
func Prepare(cfg *config.Config) (*Job, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	spec, g, part, err := LoadGraph(cfg.Graph)
	if err != nil {
		return nil, err
	}
	report, err := AuditGraph(g, part)
	if err != nil {
		return nil, err
	}
	m, err := matrix.Build(g)
	if err != nil {
		return nil, err
	}
	el, err := matrix.EdgeListFromStructure(m.Structure)
	if err != nil {
		return nil, err
	}
	mtd, err := integrators.ParseMethod(cfg.Method)
	if err != nil {
		return nil, err
	}
	stepper, err := integrators.New(mtd, m.Structure, cfg.Step, cfg.IntegratorOptions(part))
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", mtd, cfg.Graph, err)
	}
	x0, err := cfg.GetInitState(g)
	if err != nil {
		return nil, err
	}

	name := spec.Name
	if name == "" {
		name = cfg.Graph
	}
	return &Job{
		Name:      name,
		Spec:      spec,
		Graph:     g,
		Partition: part,
		Report:    report,
		Matrices:  m,
		Edges:     el,
		Method:    mtd,
		Stepper:   stepper,
		X0:        x0,
		Config:    cfg,
	}, nil
}

// Metrics returns a fresh default metric set.
func (j *Job) Metrics() []sim.Metric {
	return DefaultMetrics(j.Edges)()
}

func DefaultMetrics(el *matrix.EdgeList) func() []sim.Metric {
	return func() []sim.Metric {
		return []sim.Metric{
			metrics.NewMeanEnergy(),
			metrics.NewEnergyDrift(),
			metrics.NewStability(integrators.DriftWarningThreshold),
			metrics.NewDriftWarnings(),
			metrics.NewPowerResidual(el),
		}
	}
}

// Run integrates the job with the default metrics.
func (j *Job) Run(ctx context.Context, sc sim.Config, logger *zap.Logger) (*sim.Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !j.Report.IsPhysical {
		logger.Warn("simulating a non-physical graph",
			zap.String("graph", j.Name),
			zap.String("status", string(j.Report.Status)))
	}
	s := sim.New(j.Stepper)
	s.SetLogger(logger)
	for _, m := range j.Metrics() {
		s.AddMetric(m)
	}
	s.AddObserver(observability.NewStepObserver(j.Method))
	start := time.Now()
	res, err := s.Run(ctx, j.X0, sc)
	observability.RecordRun(j.Method, time.Since(start), err)
	return res, err
}

// RunInfo describes the job for the run store.
func (j *Job) RunInfo() storage.RunInfo {
	return storage.RunInfo{
		Graph:    j.Name,
		Vertices: j.Graph.Vertices(),
		Sparse:   j.Config.Sparse,
		Seed:     j.Config.Seed,
	}
}
