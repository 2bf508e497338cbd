package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/phnet/internal/analysis"
	"github.com/san-kum/phnet/internal/audit"
	"github.com/san-kum/phnet/internal/automation"
	"github.com/san-kum/phnet/internal/config"
	"github.com/san-kum/phnet/internal/graph"
	"github.com/san-kum/phnet/internal/integrators"
	"github.com/san-kum/phnet/internal/matrix"
	"github.com/san-kum/phnet/internal/observability"
	"github.com/san-kum/phnet/internal/sim"
	"github.com/san-kum/phnet/internal/spectral"
	"github.com/san-kum/phnet/internal/storage"
	"github.com/san-kum/phnet/internal/survey"
	"github.com/san-kum/phnet/internal/viz"
)

var (
	configFile  string
	dataDir     string
	logLevel    string
	logFormat   string
	logFile     string
	themeName   string
	metricsAddr string

	metricsServer *observability.MetricsServer

	method        string
	step          float64
	steps         int
	sparse        bool
	tolerance     float64
	seed          int64
	preset        string
	record        int
	stopOnWarning bool
	noSave        bool

	vertex    string
	amplitude float64
	random    bool

	follow       bool
	useStructure bool
	verify       bool
	clusterTol   float64

	workers    int
	includeAll bool
	jsonOut    string
	outFile    string

	component int
	width     int
	height    int
	phase     []int
	svgOut    string

	sweepMin       float64
	sweepMax       float64
	sweepPoints    int
	sweepDuration  float64
	driftThreshold float64

	// cfg is loaded once per invocation and adjusted by each command.
	cfg *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "phnet",
		Short:         "port-Hamiltonian network auditor and structure-preserving integrator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if metricsServer != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = metricsServer.Shutdown(ctx)
			}
			observability.Sync()
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this rotated file")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "terminal", "color theme")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while the command runs")

	auditCmd := &cobra.Command{
		Use:   "audit [graph]",
		Short: "check the bipartite sign rule",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAudit,
	}
	auditCmd.Flags().BoolVar(&follow, "follow", false, "re-audit the graph file whenever it changes")

	rectifyCmd := &cobra.Command{
		Use:   "rectify [graph]",
		Short: "flip mismatched signs and re-audit",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRectify,
	}
	rectifyCmd.Flags().StringVar(&outFile, "out", "", "write the rectified graph to this yaml file")

	polyCmd := &cobra.Command{
		Use:   "poly [graph]",
		Short: "exact characteristic polynomial",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPoly,
	}
	polyCmd.Flags().BoolVar(&useStructure, "structure", false, "use the signed structure matrix J instead of A")
	polyCmd.Flags().BoolVar(&verify, "verify", false, "verify p(A) = 0")

	eigenCmd := &cobra.Command{
		Use:   "eigen [graph]",
		Short: "eigenvalues with multiplicities",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEigen,
	}
	eigenCmd.Flags().BoolVar(&useStructure, "structure", false, "use the signed structure matrix J instead of A")
	eigenCmd.Flags().Float64Var(&clusterTol, "cluster-tol", config.DefaultClusterTolerance, "root clustering tolerance")

	simulateCmd := &cobra.Command{
		Use:   "simulate [graph]",
		Short: "integrate dx/dt = Jx and save the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulate,
	}
	addRunFlags(simulateCmd)
	simulateCmd.Flags().IntVar(&record, "record", 1, "keep every n-th sample (0 keeps none)")
	simulateCmd.Flags().BoolVar(&stopOnWarning, "stop-on-warning", false, "stop at the first drift warning")
	simulateCmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the run")

	compareCmd := &cobra.Command{
		Use:   "compare [graph] [method1] [method2] ...",
		Short: "compare integrators on the same graph",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCompare,
	}
	addRunFlags(compareCmd)
	compareCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = one per method)")
	compareCmd.Flags().IntVar(&width, "width", 80, "plot width")
	compareCmd.Flags().IntVar(&height, "height", 12, "plot height")

	watchCmd := &cobra.Command{
		Use:   "watch [graph]",
		Short: "step a trajectory live",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runWatch,
	}
	addRunFlags(watchCmd)

	surveyCmd := &cobra.Command{
		Use:   "survey [n]",
		Short: "enumerate graphs on n vertices and group them by spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  runSurvey,
	}
	surveyCmd.Flags().IntVar(&workers, "workers", 0, "concurrent workers (0 = GOMAXPROCS)")
	surveyCmd.Flags().BoolVar(&includeAll, "all", false, "include spectra without a closed form")
	surveyCmd.Flags().StringVar(&jsonOut, "json", "", "write the survey as JSON to this file")

	presetsCmd := &cobra.Command{
		Use:   "presets [graph]",
		Short: "list graph presets, or run presets for a graph",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy, drift and one state component of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&component, "component", 0, "state index to plot")
	plotCmd.Flags().IntVar(&width, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&height, "height", 10, "plot height")
	plotCmd.Flags().IntSliceVar(&phase, "phase", nil, "plot two components against each other, e.g. --phase 0,2")
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "write the phase portrait as SVG to this file")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the runs")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&component, "component", 0, "state index to analyze")

	sweepCmd := &cobra.Command{
		Use:   "sweep [graph]",
		Short: "drift and trajectory separation over a range of step sizes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.01, "smallest step")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "largest step")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 8, "number of step sizes")
	sweepCmd.Flags().Float64Var(&sweepDuration, "duration", 50, "simulated time per step size")
	sweepCmd.Flags().Float64Var(&driftThreshold, "threshold", integrators.DriftWarningThreshold, "acceptable max drift")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = all at once)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	rootCmd.AddCommand(auditCmd, rectifyCmd, polyCmd, eigenCmd, simulateCmd, compareCmd, watchCmd, surveyCmd, presetsCmd, listCmd, plotCmd, analyzeCmd, sweepCmd, batchCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&method, "method", config.DefaultMethod, "integrator ("+methodNames()+")")
	cmd.Flags().Float64Var(&step, "step", config.DefaultStep, "step size h")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().BoolVar(&sparse, "sparse", false, "use the sparse CGNR solve for cayley/trapezoidal")
	cmd.Flags().Float64Var(&tolerance, "tol", config.DefaultSolverTolerance, "sparse solver tolerance")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for --random")
	cmd.Flags().StringVar(&preset, "preset", "", "use a run preset for the graph")
	cmd.Flags().StringVar(&vertex, "vertex", "", "vertex displaced in x0")
	cmd.Flags().Float64Var(&amplitude, "amplitude", config.DefaultAmplitude, "displacement of the vertex")
	cmd.Flags().BoolVar(&random, "random", false, "random normal x0")
}

func methodNames() string {
	names := make([]string, 0, len(integrators.Methods()))
	for _, m := range integrators.Methods() {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}

func loadConfig(cmd *cobra.Command) error {
	cfg = config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("data") || configFile == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = metricsAddr
	}
	viz.SetTheme(themeName)

	observability.InitializeLogger(cfg.Log)
	if cfg.MetricsAddr != "" {
		ms, err := observability.StartMetricsServer(cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
		metricsServer = ms
		observability.GetLogger().Info("serving metrics", zap.String("addr", ms.Addr()))
	}
	return nil
}

// applyRunFlags layers a preset and then explicitly set flags over cfg.
func applyRunFlags(cmd *cobra.Command, graphRef string) error {
	if preset != "" {
		p := config.GetPreset(graphRef, preset)
		if p == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(graphRef))
		}
		p.Log = cfg.Log
		p.DataDir = cfg.DataDir
		cfg = p
	}
	cfg.Graph = graphRef

	flags := cmd.Flags()
	if flags.Changed("method") || (preset == "" && configFile == "") {
		cfg.Method = method
	}
	if flags.Changed("step") || (preset == "" && configFile == "") {
		cfg.Step = step
	}
	if flags.Changed("steps") || (preset == "" && configFile == "") {
		cfg.Steps = steps
	}
	if flags.Changed("sparse") {
		cfg.Sparse = sparse
	}
	if flags.Changed("tol") {
		cfg.SolverTolerance = tolerance
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("vertex") {
		cfg.InitState.Vertex = vertex
		cfg.InitState.Values = nil
		cfg.InitState.Random = false
	}
	if flags.Changed("amplitude") {
		cfg.InitState.Amplitude = amplitude
	}
	if flags.Changed("random") {
		cfg.InitState.Random = random
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	return cfg.Validate()
}

func graphArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Graph
}

type loadedGraph struct {
	name string
	spec graph.Spec
	g    *graph.Graph
	part *graph.Partition
}

func loadGraph(ref string) (*loadedGraph, error) {
	spec, g, part, err := automation.LoadGraph(ref)
	if err != nil {
		return nil, err
	}
	name := spec.Name
	if name == "" {
		name = ref
	}
	return &loadedGraph{name: name, spec: spec, g: g, part: part}, nil
}

func (lg *loadedGraph) audit() (*audit.Report, error) {
	return automation.AuditGraph(lg.g, lg.part)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runAudit(cmd *cobra.Command, args []string) error {
	if follow {
		return followAudit(graphArg(args))
	}
	lg, err := loadGraph(graphArg(args))
	if err != nil {
		return err
	}
	report, err := lg.audit()
	if err != nil {
		return err
	}
	observability.GetLogger().Debug("audit finished",
		zap.String("graph", lg.name),
		zap.String("status", string(report.Status)),
		zap.Int("violations", len(report.Violations)))

	fmt.Print(viz.RenderAudit(lg.g, report))
	return nil
}

func followAudit(path string) error {
	ctx, stop := signalContext()
	defer stop()
	logger := observability.GetLogger()
	fmt.Printf("following %s, ctrl+c to stop\n", path)
	return automation.WatchGraphFile(ctx, path, automation.WatchOptions{Logger: logger}, func(rev automation.Revision) {
		fmt.Printf("\n── revision %d ──\n", rev.Seq)
		if rev.Err != nil {
			logger.Warn("graph file rejected", zap.String("path", path), zap.Error(rev.Err))
			fmt.Printf("error: %v\n", rev.Err)
			return
		}
		fmt.Print(viz.RenderAudit(rev.Graph, rev.Report))
	})
}

func runRectify(cmd *cobra.Command, args []string) error {
	lg, err := loadGraph(graphArg(args))
	if err != nil {
		return err
	}
	report, err := lg.audit()
	if err != nil {
		return err
	}
	rect, err := audit.Rectify(lg.g, report)
	if err != nil {
		return err
	}
	fmt.Print(viz.RenderRectification(rect))

	if outFile != "" {
		spec := graph.SpecOf(lg.name, rect.Graph)
		spec.Stiffness = lg.spec.Stiffness
		if err := graph.Save(outFile, spec); err != nil {
			return err
		}
		fmt.Printf("rectified graph written to %s\n", outFile)
	}
	return nil
}

func selectMatrix(g *graph.Graph) (*matrix.IntMatrix, string, error) {
	m, err := matrix.Build(g)
	if err != nil {
		return nil, "", err
	}
	if useStructure {
		return m.Structure, "J", nil
	}
	return m.Adjacency, "A", nil
}

func runPoly(cmd *cobra.Command, args []string) error {
	lg, err := loadGraph(graphArg(args))
	if err != nil {
		return err
	}
	a, label, err := selectMatrix(lg.g)
	if err != nil {
		return err
	}
	p, err := spectral.CharacteristicPolynomial(a)
	if err != nil {
		return err
	}

	fmt.Println(matrix.Format(a))
	fmt.Print(viz.RenderPolynomial(fmt.Sprintf("det(λI - %s)", label), p))

	if verify {
		if err := spectral.VerifyCayleyHamilton(a, p); err != nil {
			return err
		}
		fmt.Printf("p(%s) = 0 verified\n", label)
	}
	return nil
}

func runEigen(cmd *cobra.Command, args []string) error {
	lg, err := loadGraph(graphArg(args))
	if err != nil {
		return err
	}
	a, label, err := selectMatrix(lg.g)
	if err != nil {
		return err
	}
	opts := spectral.DefaultOptions()
	opts.ClusterTolerance = clusterTol
	set, err := spectral.Eigenvalues(a, opts)
	if err != nil {
		return err
	}
	for _, w := range set.Warnings {
		observability.GetLogger().Warn("eigenvalue check failed", zap.String("graph", lg.name), zap.Error(w))
	}
	fmt.Print(viz.RenderEigenvalues(fmt.Sprintf("spectrum of %s", label), set))
	return nil
}

// prepareRun applies presets and flags and builds the job for a run command.
func prepareRun(cmd *cobra.Command, args []string) (*automation.Job, error) {
	if err := applyRunFlags(cmd, graphArg(args)); err != nil {
		return nil, err
	}
	return automation.Prepare(cfg)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	job, err := prepareRun(cmd, args)
	if err != nil {
		return err
	}
	logger := observability.GetLogger()

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s on %s...\n", job.Method, job.Name)
	result, err := job.Run(ctx, sim.Config{Steps: cfg.Steps, Record: record, StopOnWarning: stopOnWarning}, logger)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("final drift: %s\n", viz.DriftText(result.FinalDrift))
	fmt.Printf("max drift:   %s\n", viz.DriftText(result.MaxDrift))
	if result.FirstWarning >= 0 {
		fmt.Printf("first warning at step %d (%d flagged)\n", result.FirstWarning, result.Warnings)
	}
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}

	if noSave {
		return nil
	}
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(job.RunInfo(), result)
	if err != nil {
		return err
	}
	logger.Info("run saved", zap.String("run_id", runID), zap.String("dir", cfg.DataDir))
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	job, err := prepareRun(cmd, args[:1])
	if err != nil {
		return err
	}

	var methods []integrators.Method
	if len(args) > 1 {
		for _, name := range args[1:] {
			mtd, err := integrators.ParseMethod(name)
			if err != nil {
				return err
			}
			methods = append(methods, mtd)
		}
	} else {
		methods = integrators.Methods()
	}
	if job.Partition == nil {
		methods = slices.DeleteFunc(methods, func(m integrators.Method) bool {
			if m == integrators.MethodLeapfrog {
				fmt.Println("skipping leapfrog: the graph declares no stiffness partition")
				return true
			}
			return false
		})
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("comparing %d integrators on %s (h=%g, %d steps)...\n", len(methods), job.Name, cfg.Step, cfg.Steps)
	results, err := sim.Compare(ctx, job.Matrices.Structure, cfg.Step, methods, job.X0,
		sim.Config{Steps: cfg.Steps, Record: max(1, cfg.Steps/200)},
		sim.CompareOptions{
			Integrator: cfg.IntegratorOptions(job.Partition),
			Workers:    cfg.Workers,
			Metrics:    automation.DefaultMetrics(job.Edges),
			Logger:     observability.GetLogger(),
		})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Print(viz.RenderComparison(results))
	fmt.Println()
	fmt.Println(viz.PlotComparison(results, viz.EnergyField, "energy H(x)", width, height))
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	job, err := prepareRun(cmd, args)
	if err != nil {
		return err
	}
	traj, err := integrators.NewTrajectory(job.Stepper, job.X0)
	if err != nil {
		return err
	}
	return viz.RunWatch(viz.NewWatch(traj, job.Graph.Vertices(), fmt.Sprintf("%s · %s · h=%g", job.Name, job.Method, cfg.Step)))
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	opts := automation.RunOptions{Base: cfg, Logger: observability.GetLogger()}
	if !noSave {
		st := storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		opts.Store = st
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario %s: %d steps\n", scenario.Name, len(scenario.Steps))
	results, runErr := automation.RunScenario(ctx, scenario, opts)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tGRAPH\tSTATUS\tMETHOD\tH\tSTEPS\tMAX DRIFT\tRUN ID")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g\t%d\t%.3e\t%s\n",
			r.Name, r.Graph, r.Status, r.Result.Method, r.Result.StepSize, r.Result.StepsTaken, r.Result.MaxDrift, r.RunID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func runSurvey(cmd *cobra.Command, args []string) error {
	var n int
	if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil {
		return fmt.Errorf("invalid vertex count %q", args[0])
	}
	opts := survey.DefaultOptions()
	opts.Workers = workers
	if !cmd.Flags().Changed("workers") {
		opts.Workers = cfg.Workers
	}
	opts.IncludeAll = includeAll
	opts.Roots.ClusterTolerance = cfg.ClusterTolerance
	opts.Logger = observability.GetLogger()

	ctx, cancel := signalContext()
	defer cancel()

	res, err := survey.Run(ctx, n, opts)
	if err != nil {
		return err
	}
	observability.RecordSurvey(res.Polynomials, res.Analytic, res.Elapsed)

	fmt.Printf("n=%d: %d edge sets, %d graphs, %d polynomials, %d with closed-form spectra (%v)\n\n",
		res.N, res.EdgeSets, res.UniqueGraphs, res.Polynomials, res.Analytic, res.Elapsed)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EDGES\tPOLYNOMIAL\tRHO\tENERGY\tCLASSES\tFAMILY\tGRAPH")
	for _, e := range res.Entries {
		fmt.Fprintf(w, "%d\t%s\t%.4f\t%.4f\t%d\t%s\t%s\n",
			e.EdgeCount, e.Polynomial, e.SpectralRadius, e.Energy, e.ClassSize, e.Family, e.EdgeString)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if jsonOut != "" {
		f, err := os.Create(jsonOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := res.WriteJSON(f); err != nil {
			return err
		}
		fmt.Printf("\nsurvey written to %s\n", jsonOut)
	}
	return nil
}

func runPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "GRAPH\tVERTICES\tEDGES\tDESCRIPTION")
		for _, name := range config.ListGraphs() {
			p := config.Graphs[name]
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", name, len(p.Spec.Vertices), len(p.Spec.Edges), p.Description)
		}
		return w.Flush()
	}

	presets := config.ListPresets(args[0])
	if len(presets) == 0 {
		fmt.Printf("no presets for graph: %s\n", args[0])
		return nil
	}
	fmt.Printf("presets for %s:\n", args[0])
	for _, name := range presets {
		p := config.GetPreset(args[0], name)
		fmt.Printf("  %-10s %s h=%g steps=%d\n", name, p.Method, p.Step, p.Steps)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGRAPH\tTIME\tMETHOD\tH\tSTEPS\tMAX DRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g\t%d\t%.3e\n",
			run.ID,
			run.Graph,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Method,
			run.StepSize,
			run.Steps,
			run.MaxDrift,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(cfg.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("graph: %s\n", meta.Graph)
	fmt.Printf("method: %s (h=%g)\n", meta.Method, meta.StepSize)
	fmt.Printf("samples: %d\n\n", len(samples))

	if len(phase) > 0 {
		return plotPhase(meta, samples)
	}

	fmt.Println(viz.PlotSeries(viz.Extract(samples, viz.EnergyField), "energy H(x)", width, height))
	fmt.Println()
	fmt.Println(viz.PlotSeries(viz.Extract(samples, viz.DriftField), "relative drift", width, height))
	fmt.Println()

	fmt.Println(viz.PlotSeries(viz.Extract(samples, viz.ComponentField(component)), vertexLabel(meta, component)+" vs time", width, height))
	return nil
}

func vertexLabel(meta *storage.RunMetadata, i int) string {
	if i >= 0 && i < len(meta.Vertices) {
		return meta.Vertices[i]
	}
	return fmt.Sprintf("x%d", i)
}

func plotPhase(meta *storage.RunMetadata, samples []integrators.Sample) error {
	if len(phase) != 2 {
		return fmt.Errorf("--phase needs two components, got %d", len(phase))
	}
	portrait, err := analysis.NewPhasePortrait(samples, phase[0], phase[1])
	if err != nil {
		return err
	}

	fmt.Printf("phase portrait: %s (x) vs %s (y)\n\n", vertexLabel(meta, phase[0]), vertexLabel(meta, phase[1]))
	fmt.Print(viz.PhaseCanvas(portrait, width/2, height).String())

	if svgOut != "" {
		svg := viz.PhaseSVG(portrait, 800, 600, string(viz.CurrentTheme.Primary))
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("\nsvg written to %s\n", svgOut)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(cfg.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) < 4 {
		return fmt.Errorf("no data")
	}
	if component < 0 || component >= len(samples[0].X) {
		return fmt.Errorf("component %d outside state of size %d", component, len(samples[0].X))
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("graph: %s\n\n", meta.Graph)

	series := viz.Extract(samples, viz.ComponentField(component))
	ps := analysis.PowerSpectrum(series)
	fmt.Println(viz.PlotSeries(ps[:max(2, len(ps)/4)], fmt.Sprintf("power spectrum (%s)", vertexLabel(meta, component)), 80, 15))
	fmt.Println()

	dt := samples[1].T - samples[0].T
	omega, err := analysis.DominantFrequency(series, dt)
	if err != nil {
		return err
	}
	fmt.Printf("dominant frequency: ω = %.4f rad/s (resolution %.4f)\n", omega, 2*math.Pi/(float64(len(series))*dt))
	if omega > 0 {
		fmt.Printf("period: %.3f s\n", 2*math.Pi/omega)
	}

	// the graph may no longer resolve; the spectrum is then skipped
	lg, err := loadGraph(meta.Graph)
	if err != nil {
		observability.GetLogger().Debug("graph not available for spectrum comparison", zap.String("graph", meta.Graph), zap.Error(err))
		return nil
	}
	m, err := matrix.Build(lg.g)
	if err != nil {
		return err
	}
	set, err := spectral.Eigenvalues(m.Structure, spectral.DefaultOptions())
	if err != nil {
		return err
	}
	freqs := set.Frequencies()
	parts := make([]string, len(freqs))
	for i, f := range freqs {
		parts[i] = fmt.Sprintf("%.4f", f)
	}
	fmt.Printf("frequencies of J: %s\n", strings.Join(parts, ", "))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	job, err := prepareRun(cmd, args)
	if err != nil {
		return err
	}
	mtd, x0 := job.Method, job.X0
	m := job.Matrices
	opts := cfg.IntegratorOptions(job.Partition)

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("sweeping %s on %s over h in [%g, %g]...\n\n", mtd, job.Name, sweepMin, sweepMax)
	points, err := analysis.SweepSteps(ctx, m.Structure, mtd, analysis.StepGrid(sweepMin, sweepMax, sweepPoints), x0, sweepDuration,
		analysis.SweepOptions{Integrator: opts, Workers: cfg.Workers})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "H\tSTEPS\tMAX DRIFT\tFINAL DRIFT\tWARNINGS\tSEPARATION RATE")
	for _, p := range points {
		stepper, err := integrators.New(mtd, m.Structure, p.Step, opts)
		if err != nil {
			return err
		}
		rate, err := analysis.SeparationRate(stepper, x0, 0, 1e-6, p.Steps)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%.4g\t%d\t%.3e\t%.3e\t%d\t%+.3e\n", p.Step, p.Steps, p.MaxDrift, p.FinalDrift, p.Warnings, rate)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if h, ok := analysis.LargestStableStep(points, driftThreshold); ok {
		fmt.Printf("\nlargest step with drift below %.1e: %g\n", driftThreshold, h)
	} else {
		fmt.Printf("\nno step keeps drift below %.1e\n", driftThreshold)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(cfg.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	result := &sim.Result{
		Method:     integrators.Method(meta.Method),
		StepSize:   meta.StepSize,
		Samples:    samples,
		StepsTaken: meta.Steps,
		FinalDrift: meta.FinalDrift,
		MaxDrift:   meta.MaxDrift,
		Warnings:   meta.Warnings,
		Metrics:    meta.Metrics,
	}
	return storage.ExportJSON(os.Stdout, meta.RunInfo, result)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
