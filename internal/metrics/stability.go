package metrics

import (
	"math"

	"github.com/san-kum/phnet/internal/integrators"
)

// Stability is the fraction of samples whose every component stays within
// threshold. Conservative methods keep ‖x‖ fixed, so for them it only drops
// when the initial state already exceeds the bound.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(sample integrators.Sample) {
	s.samples++
	for _, val := range sample.X {
		if math.Abs(val) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// DriftWarnings counts samples flagged above integrators.DriftWarningThreshold.
type DriftWarnings struct {
	count int
}

func NewDriftWarnings() *DriftWarnings { return &DriftWarnings{} }

func (d *DriftWarnings) Name() string { return "drift_warnings" }

func (d *DriftWarnings) Observe(s integrators.Sample) {
	if s.Warning {
		d.count++
	}
}

func (d *DriftWarnings) Value() float64 { return float64(d.count) }
func (d *DriftWarnings) Reset()         { d.count = 0 }
