package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/phnet/internal/dynamo"
	"github.com/san-kum/phnet/internal/integrators"
)

type Simulator struct {
	stepper   integrators.Stepper
	metrics   []Metric
	observers []Observer
	logger    *zap.Logger
}

func New(stepper integrators.Stepper) *Simulator {
	return &Simulator{
		stepper:   stepper,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    zap.NewNop(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) SetLogger(l *zap.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Run pulls cfg.Steps samples from a fresh trajectory starting at x0. On a
// step failure or cancellation the partial result is returned with the error.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	tr, err := integrators.NewTrajectory(s.stepper, x0)
	if err != nil {
		return nil, err
	}

	capacity := 0
	if cfg.Record > 0 {
		capacity = cfg.Steps/cfg.Record + 1
	}
	result := &Result{
		Method:       s.stepper.Method(),
		StepSize:     s.stepper.StepSize(),
		Samples:      make([]integrators.Sample, 0, capacity),
		FirstWarning: -1,
		Metrics:      make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	log := s.logger.With(zap.String("method", string(result.Method)), zap.Float64("h", result.StepSize))
	log.Debug("run started", zap.Int("dim", len(x0)), zap.Int("steps", cfg.Steps))

	start := time.Now()
	defer func() {
		result.Elapsed = time.Since(start)
		for _, m := range s.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}()

	for sample, err := range tr.All() {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		if err != nil {
			log.Error("step failed", zap.Int("step", result.StepsTaken+1), zap.Error(err))
			return result, err
		}

		s.observe(sample, result, cfg)
		if sample.Warning {
			result.Warnings++
			if result.FirstWarning < 0 {
				result.FirstWarning = sample.Step
				log.Warn("energy drift above threshold",
					zap.Int("step", sample.Step),
					zap.Float64("t", sample.T),
					zap.Float64("drift", sample.Drift))
			}
			if cfg.StopOnWarning {
				result.Stopped = true
				break
			}
		}
		if sample.Step >= cfg.Steps {
			break
		}
	}

	log.Info("run finished",
		zap.Int("steps", result.StepsTaken),
		zap.Float64("final_drift", result.FinalDrift),
		zap.Float64("max_drift", result.MaxDrift),
		zap.Int("warnings", result.Warnings))
	return result, nil
}

func (s *Simulator) observe(sample integrators.Sample, result *Result, cfg Config) {
	for _, m := range s.metrics {
		m.Observe(sample)
	}
	for _, obs := range s.observers {
		obs.OnStep(sample)
	}

	result.StepsTaken = sample.Step
	result.FinalDrift = sample.Drift
	result.MaxDrift = math.Max(result.MaxDrift, sample.Drift)
	if cfg.Record > 0 && (sample.Step%cfg.Record == 0 || sample.Step == cfg.Steps) {
		result.Samples = append(result.Samples, sample)
	}
}

func validateConfig(cfg Config) error {
	if cfg.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}
	if cfg.Record < 0 {
		return fmt.Errorf("record interval must not be negative, got %d", cfg.Record)
	}
	return nil
}

// RunWithCallback streams samples to callback until it returns false, steps
// samples have been produced after the initial one, or ctx is done.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 dynamo.State, steps int, callback func(integrators.Sample) bool) error {
	if err := validateConfig(Config{Steps: steps}); err != nil {
		return err
	}
	tr, err := integrators.NewTrajectory(s.stepper, x0)
	if err != nil {
		return err
	}

	for sample, err := range tr.All() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			return err
		}
		if !callback(sample) || sample.Step >= steps {
			return nil
		}
	}
	return nil
}
