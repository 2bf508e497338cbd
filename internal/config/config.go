package config

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/phnet/internal/dynamo"
	"github.com/san-kum/phnet/internal/graph"
	"github.com/san-kum/phnet/internal/integrators"
)

const (
	DefaultGraph            = "mass-spring-chain"
	DefaultMethod           = "rodrigues"
	DefaultStep             = 0.05
	DefaultSteps            = 2000
	DefaultSolverTolerance  = 1e-13
	DefaultClusterTolerance = 1e-6
	DefaultDataDir          = "data"
	DefaultAmplitude        = 1.0
)

type Config struct {
	// Graph is a preset name or a path to a YAML graph file.
	Graph            string          `yaml:"graph" validate:"required"`
	Method           string          `yaml:"method" validate:"method"`
	Step             float64         `yaml:"step" validate:"gt=0"`
	Steps            int             `yaml:"steps" validate:"gt=0"`
	Sparse           bool            `yaml:"sparse"`
	SolverTolerance  float64         `yaml:"solver_tolerance" validate:"gt=0"`
	ClusterTolerance float64         `yaml:"cluster_tolerance" validate:"gt=0"`
	Workers          int             `yaml:"workers" validate:"gte=0"`
	DataDir          string          `yaml:"data_dir"`
	Seed             int64           `yaml:"seed"`
	InitState        InitStateConfig `yaml:"init_state"`
	Log              LogConfig       `yaml:"log"`
	// MetricsAddr serves Prometheus metrics on /metrics when set.
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
}

// InitStateConfig picks x₀. Values wins over Random, which wins over Vertex.
// With nothing set the first vertex is displaced by Amplitude.
type InitStateConfig struct {
	Values    []float64 `yaml:"values,omitempty"`
	Random    bool      `yaml:"random,omitempty"`
	Vertex    string    `yaml:"vertex,omitempty"`
	Amplitude float64   `yaml:"amplitude"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"oneof=console json"`
	Name   string `yaml:"name"`
	// File enables an additional JSON log with rotation.
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
	Compress   bool   `yaml:"compress"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("method", validateMethod)
}

func validateMethod(fl validator.FieldLevel) bool {
	_, err := integrators.ParseMethod(fl.Field().String())
	return err == nil
}

func DefaultConfig() *Config {
	return &Config{
		Graph:            DefaultGraph,
		Method:           DefaultMethod,
		Step:             DefaultStep,
		Steps:            DefaultSteps,
		SolverTolerance:  DefaultSolverTolerance,
		ClusterTolerance: DefaultClusterTolerance,
		DataDir:          DefaultDataDir,
		InitState:        InitStateConfig{Amplitude: DefaultAmplitude},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			Name:       "phnet",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the values a run depends on. Only the first failing
// field is reported.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("config: %w", err)
	}
	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "method":
		_, perr := integrators.ParseMethod(c.Method)
		return fmt.Errorf("config: %w", perr)
	case "required":
		return fmt.Errorf("config: %s is required", field)
	case "gt":
		return fmt.Errorf("config: %s must be positive, got %v", field, fe.Value())
	case "gte":
		return fmt.Errorf("config: %s must not be negative, got %v", field, fe.Value())
	case "oneof":
		return fmt.Errorf("config: %s must be one of %s, got %q", field, fe.Param(), fe.Value())
	}
	return fmt.Errorf("config: %s failed %s", field, fe.Tag())
}

// IntegratorOptions maps the solver settings onto integrators.Options.
func (c *Config) IntegratorOptions(p *graph.Partition) integrators.Options {
	return integrators.Options{
		Sparse:    c.Sparse,
		Tolerance: c.SolverTolerance,
		Partition: p,
	}
}

// GetInitState builds x₀ for a graph.
func (c *Config) GetInitState(g *graph.Graph) (dynamo.State, error) {
	n := g.Order()
	is := c.InitState
	switch {
	case len(is.Values) > 0:
		x := dynamo.State(append([]float64(nil), is.Values...))
		if err := dynamo.CheckDim(x, n); err != nil {
			return nil, fmt.Errorf("config: init_state.values: %w", err)
		}
		return x, nil
	case is.Random:
		rng := rand.New(rand.NewSource(c.Seed))
		x := make(dynamo.State, n)
		for i := range x {
			x[i] = rng.NormFloat64()
		}
		return x, nil
	}

	x := make(dynamo.State, n)
	if n == 0 {
		return x, nil
	}
	v := 0
	if is.Vertex != "" {
		idx, ok := g.Index(is.Vertex)
		if !ok {
			return nil, fmt.Errorf("config: init_state.vertex %q not in graph", is.Vertex)
		}
		v = idx
	}
	amp := is.Amplitude
	if amp == 0 {
		amp = DefaultAmplitude
	}
	x[v] = amp
	return x, nil
}
