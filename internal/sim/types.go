package sim

import (
	"time"

	"github.com/san-kum/phnet/internal/integrators"
)

// Metric folds samples into one number.
type Metric interface {
	Name() string
	Observe(s integrators.Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s integrators.Sample)
}

type Config struct {
	// Steps is the number of steps after the initial sample.
	Steps int
	// Record keeps every Record-th sample; 0 keeps none, so only metrics and
	// the drift summary are produced.
	Record int
	// StopOnWarning ends the run at the first sample whose drift exceeds
	// integrators.DriftWarningThreshold.
	StopOnWarning bool
}

func DefaultConfig() Config {
	return Config{Steps: 1000, Record: 1}
}

type Result struct {
	Method     integrators.Method   `json:"method"`
	StepSize   float64              `json:"step_size"`
	Samples    []integrators.Sample `json:"samples,omitempty"`
	StepsTaken int                  `json:"steps_taken"`
	FinalDrift float64              `json:"final_drift"`
	MaxDrift   float64              `json:"max_drift"`
	Warnings   int                  `json:"warnings"`
	// FirstWarning is the step of the first flagged sample, or -1.
	FirstWarning int                `json:"first_warning"`
	Stopped      bool               `json:"stopped"`
	Metrics      map[string]float64 `json:"metrics"`
	Elapsed      time.Duration      `json:"elapsed"`
}

// Final returns the last recorded sample.
func (r *Result) Final() (integrators.Sample, bool) {
	if len(r.Samples) == 0 {
		return integrators.Sample{}, false
	}
	return r.Samples[len(r.Samples)-1], true
}
