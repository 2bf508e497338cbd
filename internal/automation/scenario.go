package automation

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/phnet/internal/audit"
	"github.com/san-kum/phnet/internal/config"
	"github.com/san-kum/phnet/internal/sim"
	"github.com/san-kum/phnet/internal/storage"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from Preset (or the base config) and overrides every
// non-zero field.
type ScenarioStep struct {
	Name          string                  `yaml:"name"`
	Graph         string                  `yaml:"graph"`
	Preset        string                  `yaml:"preset"`
	Method        string                  `yaml:"method"`
	Step          float64                 `yaml:"step"`
	Steps         int                     `yaml:"steps"`
	Sparse        bool                    `yaml:"sparse"`
	Seed          int64                   `yaml:"seed"`
	InitState     *config.InitStateConfig `yaml:"init_state"`
	Record        int                     `yaml:"record"`
	StopOnWarning bool                    `yaml:"stop_on_warning"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario: parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario: %s has no steps", path)
	}
	return &scenario, nil
}

// Config merges the step over base.
func (s ScenarioStep) Config(base *config.Config) (*config.Config, error) {
	cfg := *base
	if s.Preset != "" {
		p := config.GetPreset(s.Graph, s.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %s for graph %s", s.Preset, s.Graph)
		}
		p.Log, p.DataDir, p.Workers = base.Log, base.DataDir, base.Workers
		cfg = *p
	}
	if s.Graph != "" {
		cfg.Graph = s.Graph
	}
	if s.Method != "" {
		cfg.Method = s.Method
	}
	if s.Step != 0 {
		cfg.Step = s.Step
	}
	if s.Steps != 0 {
		cfg.Steps = s.Steps
	}
	if s.Sparse {
		cfg.Sparse = true
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.InitState != nil {
		cfg.InitState = *s.InitState
	}
	return &cfg, cfg.Validate()
}

type StepResult struct {
	Index  int
	Name   string
	Graph  string
	Status audit.Status
	// RunID is empty when no store was given.
	RunID  string
	Result *sim.Result
}

type RunOptions struct {
	// Base supplies every setting a step leaves unset.
	Base *config.Config
	// Store persists each run when set.
	Store  *storage.Store
	Logger *zap.Logger
}

// RunScenario executes the steps in order. On failure the results so far
// are returned with the error.
func RunScenario(ctx context.Context, scenario *Scenario, opts RunOptions) ([]StepResult, error) {
	base := opts.Base
	if base == nil {
		base = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]StepResult, 0, len(scenario.Steps))
	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}
		logger.Info("scenario step",
			zap.String("scenario", scenario.Name),
			zap.Int("index", i+1),
			zap.Int("of", len(scenario.Steps)),
			zap.String("name", name))

		cfg, err := step.Config(base)
		if err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}
		job, err := Prepare(cfg)
		if err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}
		res, err := job.Run(ctx, sim.Config{Steps: cfg.Steps, Record: step.Record, StopOnWarning: step.StopOnWarning}, logger)
		if err != nil {
			return results, fmt.Errorf("%s run: %w", name, err)
		}

		sr := StepResult{Index: i, Name: name, Graph: job.Name, Status: job.Report.Status, Result: res}
		if opts.Store != nil {
			if sr.RunID, err = opts.Store.Save(job.RunInfo(), res); err != nil {
				return results, fmt.Errorf("%s save: %w", name, err)
			}
		}
		results = append(results, sr)
	}
	return results, nil
}
