package sim

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/phnet/internal/dynamo"
	"github.com/san-kum/phnet/internal/integrators"
	"github.com/san-kum/phnet/internal/matrix"
)

type CompareOptions struct {
	Integrator integrators.Options
	// Workers bounds concurrent runs; zero means one per method.
	Workers int
	// Metrics returns a fresh metric set for each run.
	Metrics func() []Metric
	Logger  *zap.Logger
}

// Compare integrates the same initial state with every method concurrently.
// Results come back in the order of methods. The first failure cancels the
// remaining runs.
func Compare(ctx context.Context, j *matrix.IntMatrix, h float64, methods []integrators.Method, x0 dynamo.State, cfg Config, opts CompareOptions) ([]*Result, error) {
	if len(methods) == 0 {
		return nil, fmt.Errorf("compare: %w: no methods", integrators.ErrUnknownMethod)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]*Result, len(methods))
	g, gCtx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}

	for i, m := range methods {
		g.Go(func() error {
			stepper, err := integrators.New(m, j, h, opts.Integrator)
			if err != nil {
				return fmt.Errorf("compare %s: %w", m, err)
			}
			s := New(stepper)
			s.SetLogger(logger)
			if opts.Metrics != nil {
				for _, metric := range opts.Metrics() {
					s.AddMetric(metric)
				}
			}
			res, err := s.Run(gCtx, x0, cfg)
			if err != nil {
				return fmt.Errorf("compare %s: %w", m, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Info("comparison finished", zap.Int("methods", len(methods)), zap.Int("steps", cfg.Steps))
	return results, nil
}
