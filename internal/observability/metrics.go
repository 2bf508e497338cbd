package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/san-kum/phnet/internal/integrators"
)

var (
	stepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phnet_sim_steps_total",
		Help: "Integrator steps taken",
	}, []string{"method"})

	driftWarningsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phnet_sim_drift_warnings_total",
		Help: "Samples whose relative energy drift crossed the warning threshold",
	}, []string{"method"})

	energyDrift = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "phnet_sim_energy_drift",
		Help: "Relative energy drift of the latest sample",
	}, []string{"method"})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phnet_sim_runs_total",
		Help: "Finished simulation runs by outcome",
	}, []string{"method", "outcome"})

	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "phnet_sim_run_duration_seconds",
		Help:    "Wall time of a simulation run",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	}, []string{"method"})

	auditsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phnet_audits_total",
		Help: "Graph audits by status",
	}, []string{"status"})

	surveyPolynomialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phnet_survey_polynomials_total",
		Help: "Distinct characteristic polynomials found by surveys, by whether the spectrum is analytic",
	}, []string{"analytic"})

	surveyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "phnet_survey_duration_seconds",
		Help:    "Wall time of a survey",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
	})
)

const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

// StepObserver feeds every sample of one run into the step counters. It
// satisfies sim.Observer.
type StepObserver struct {
	steps    prometheus.Counter
	warnings prometheus.Counter
	drift    prometheus.Gauge
}

func NewStepObserver(method integrators.Method) *StepObserver {
	m := string(method)
	return &StepObserver{
		steps:    stepsTotal.WithLabelValues(m),
		warnings: driftWarningsTotal.WithLabelValues(m),
		drift:    energyDrift.WithLabelValues(m),
	}
}

func (o *StepObserver) OnStep(s integrators.Sample) {
	if s.Step > 0 {
		o.steps.Inc()
	}
	if s.Warning {
		o.warnings.Inc()
	}
	o.drift.Set(s.Drift)
}

// RecordRun counts a finished run and its wall time.
func RecordRun(method integrators.Method, elapsed time.Duration, err error) {
	outcome := OutcomeOK
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = OutcomeCancelled
	case err != nil:
		outcome = OutcomeError
	}
	runsTotal.WithLabelValues(string(method), outcome).Inc()
	runDuration.WithLabelValues(string(method)).Observe(elapsed.Seconds())
}

func RecordAudit(status string) {
	auditsTotal.WithLabelValues(status).Inc()
}

func RecordSurvey(polynomials, analytic int, elapsed time.Duration) {
	surveyPolynomialsTotal.WithLabelValues("true").Add(float64(analytic))
	surveyPolynomialsTotal.WithLabelValues("false").Add(float64(polynomials - analytic))
	surveyDuration.Observe(elapsed.Seconds())
}

// MetricsHandler serves the default registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// MetricsServer exposes /metrics while a command runs.
type MetricsServer struct {
	srv *http.Server
	ln  net.Listener
}

// StartMetricsServer listens on addr and serves /metrics in the background.
func StartMetricsServer(addr string) (*MetricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler())
	ms := &MetricsServer{
		srv: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
	}
	go func() {
		if err := ms.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			GetLogger().Warn("metrics server stopped", zap.Error(err))
		}
	}()
	return ms, nil
}

// Addr is the bound address, useful when addr had port 0.
func (m *MetricsServer) Addr() string { return m.ln.Addr().String() }

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
