package config

import (
	"math"
	"testing"

	"github.com/perceptlab/toj-engine/internal/design"
)

func loadTestConfig(t *testing.T) *ExperimentConfig {
	t.Helper()
	cfg, err := LoadExperimentConfig("testdata/experiment.yaml")
	if err != nil {
		t.Fatalf("failed to load experiment.yaml: %v", err)
	}
	return cfg
}

func TestLoadExperimentConfig(t *testing.T) {
	cfg := loadTestConfig(t)

	if cfg.Experiment.ID != "trust-toj" {
		t.Errorf("experiment id = %q, want trust-toj", cfg.Experiment.ID)
	}
	if cfg.Design.Alpha != 20 {
		t.Errorf("alpha = %v, want 20", cfg.Design.Alpha)
	}
	if cfg.Design.GridSize != [2]int{7, 4} {
		t.Errorf("grid size = %v, want [7 4]", cfg.Design.GridSize)
	}
	if cfg.UIPort() != 8080 {
		t.Errorf("ui port = %d, want 8080", cfg.UIPort())
	}
	if len(cfg.Assets) != 4 {
		t.Errorf("manifest has %d assets, want 4", len(cfg.Assets))
	}
}

func TestSOASetRounding(t *testing.T) {
	cfg := loadTestConfig(t)

	soa := cfg.SOASet()
	want := []float64{-100, -50, -16.667, 0, 16.667, 50, 100}
	if len(soa) != len(want) {
		t.Fatalf("soa set has %d entries, want %d", len(soa), len(want))
	}
	for i := range soa {
		if math.Abs(soa[i]-want[i]) > 1e-9 {
			t.Errorf("soa[%d] = %v, want %v", i, soa[i], want[i])
		}
	}

	if n := len(cfg.TutorialSOASet()); n != 4 {
		t.Errorf("tutorial soa set has %d entries, want 4", n)
	}
}

func TestFactorSets(t *testing.T) {
	cfg := loadTestConfig(t)

	f := cfg.MainFactors()
	if f.Cardinality() != 2*2*7 {
		t.Errorf("main cardinality = %d, want 28", f.Cardinality())
	}
	tf := cfg.TutorialFactors()
	if tf.Cardinality() != 2*2*4 {
		t.Errorf("tutorial cardinality = %d, want 16", tf.Cardinality())
	}
}

func TestValidateRejectsInconsistencies(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ExperimentConfig)
	}{
		{"missing experiment id", func(c *ExperimentConfig) { c.Experiment.ID = "" }},
		{"tiny grid", func(c *ExperimentConfig) { c.Design.GridSize = [2]int{1, 0} }},
		{"zero alpha", func(c *ExperimentConfig) { c.Design.Alpha = 0 }},
		{"single soa level", func(c *ExperimentConfig) { c.Design.SOASteps = []float64{0} }},
		{"no tutorial soa", func(c *ExperimentConfig) { c.Design.TutorialSOASteps = nil }},
		{"zero repetitions", func(c *ExperimentConfig) { c.Design.Repetitions = 0 }},
		{"inverted fixation range", func(c *ExperimentConfig) { c.Design.FixationMS = [2]int{500, 300} }},
		{"zero tutorial length", func(c *ExperimentConfig) { c.Design.TutorialLength = 0 }},
		{"no trust levels", func(c *ExperimentConfig) { c.Factors.Trust = nil }},
		{"no probe levels", func(c *ExperimentConfig) { c.Factors.ProbeLeft = nil }},
		{"empty distrust pool", func(c *ExperimentConfig) {
			c.Assets = []design.Asset{{File: "a.png", Trust: "trust"}}
		}},
		{"nameless asset", func(c *ExperimentConfig) {
			c.Assets = append(c.Assets, design.Asset{Trust: "trust"})
		}},
	}

	for _, tt := range tests {
		cfg := loadTestConfig(t)
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate passed, want error", tt.name)
		}
	}
}
