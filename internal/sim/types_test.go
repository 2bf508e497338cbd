package sim

import (
	"testing"

	"github.com/san-kum/phnet/internal/integrators"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Steps <= 0 {
		t.Error("DefaultConfig has invalid Steps")
	}
	if cfg.Record <= 0 {
		t.Error("DefaultConfig records nothing")
	}
	if err := validateConfig(cfg); err != nil {
		t.Errorf("DefaultConfig does not validate: %v", err)
	}
}

func TestResultFinal(t *testing.T) {
	var r Result
	if _, ok := r.Final(); ok {
		t.Error("empty result should have no final sample")
	}

	r.Samples = []integrators.Sample{{Step: 0}, {Step: 5}}
	s, ok := r.Final()
	if !ok || s.Step != 5 {
		t.Errorf("Final() = %v, %v, want step 5", s, ok)
	}
}
