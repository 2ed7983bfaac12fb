package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/perceptlab/toj-engine/internal/design"
)

// ExperimentConfig is the top-level experiment definition loaded from
// experiment.yaml.
type ExperimentConfig struct {
	Version    int `yaml:"version"`
	Experiment struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"experiment"`
	Network struct {
		UIPort   int `yaml:"ui_port"`
		MQTTPort int `yaml:"mqtt_port"`
		DBPort   int `yaml:"db_port"`
	} `yaml:"network"`
	Design  DesignConfig   `yaml:"design"`
	Factors FactorsConfig  `yaml:"factors"`
	Assets  []design.Asset `yaml:"assets"`
}

// DesignConfig holds the fixed design parameters.
type DesignConfig struct {
	GridSize [2]int  `yaml:"grid_size"`
	Alpha    float64 `yaml:"alpha"`
	// SOASteps are multiples of one display frame; FrameMS converts
	// them to milliseconds, rounded to 3 decimals.
	SOASteps         []float64 `yaml:"soa_steps"`
	TutorialSOASteps []float64 `yaml:"tutorial_soa_steps"`
	FrameMS          float64   `yaml:"frame_ms"`
	Repetitions      int       `yaml:"repetitions"`
	FixationMS       [2]int    `yaml:"fixation_ms"`
	TutorialLength   int       `yaml:"tutorial_length"`
}

// FactorsConfig declares the factor levels of the main design.
type FactorsConfig struct {
	ProbeLeft []bool   `yaml:"probe_left"`
	Trust     []string `yaml:"trust"`
}

// UIPort returns the configured UI port, defaulting to 8080 if not set.
func (c *ExperimentConfig) UIPort() int {
	if c.Network.UIPort == 0 {
		return 8080
	}
	return c.Network.UIPort
}

// SOASet returns the main-run SOA choice set in milliseconds.
func (c *ExperimentConfig) SOASet() []float64 {
	return soaMillis(c.Design.SOASteps, c.Design.FrameMS)
}

// TutorialSOASet returns the reduced tutorial SOA set in milliseconds.
func (c *ExperimentConfig) TutorialSOASet() []float64 {
	return soaMillis(c.Design.TutorialSOASteps, c.Design.FrameMS)
}

func soaMillis(steps []float64, frameMS float64) []float64 {
	out := make([]float64, len(steps))
	for i, s := range steps {
		out[i] = math.Round(s*frameMS*1000) / 1000
	}
	return out
}

// MainFactors returns the full factor set for the main run.
func (c *ExperimentConfig) MainFactors() design.Factors {
	return design.Factors{
		ProbeLeft: c.Factors.ProbeLeft,
		Trust:     c.Factors.Trust,
		SOA:       c.SOASet(),
	}
}

// TutorialFactors returns the reduced factor set for the tutorial run.
func (c *ExperimentConfig) TutorialFactors() design.Factors {
	return design.Factors{
		ProbeLeft: c.Factors.ProbeLeft,
		Trust:     c.Factors.Trust,
		SOA:       c.TutorialSOASet(),
	}
}

// LoadExperimentConfig reads and validates an experiment.yaml file.
func LoadExperimentConfig(path string) (*ExperimentConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg ExperimentConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported experiment.yaml version: %d", cfg.Version)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate fails fast on any configuration inconsistency. A degenerate
// design must never silently produce a degenerate timeline.
func (c *ExperimentConfig) Validate() error {
	if c.Experiment.ID == "" {
		return fmt.Errorf("experiment.id is required")
	}
	if c.Design.GridSize[0] < 2 || c.Design.GridSize[1] < 1 {
		return fmt.Errorf("design.grid_size %v is too small", c.Design.GridSize)
	}
	if c.Design.Alpha <= 0 {
		return fmt.Errorf("design.alpha must be positive, got %v", c.Design.Alpha)
	}
	if c.Design.FrameMS <= 0 {
		return fmt.Errorf("design.frame_ms must be positive, got %v", c.Design.FrameMS)
	}
	if len(c.Design.SOASteps) < 2 {
		return fmt.Errorf("design.soa_steps needs at least 2 levels, got %d", len(c.Design.SOASteps))
	}
	if len(c.Design.TutorialSOASteps) == 0 {
		return fmt.Errorf("design.tutorial_soa_steps is empty")
	}
	if c.Design.Repetitions < 1 {
		return fmt.Errorf("design.repetitions must be >= 1, got %d", c.Design.Repetitions)
	}
	if c.Design.FixationMS[0] <= 0 || c.Design.FixationMS[1] < c.Design.FixationMS[0] {
		return fmt.Errorf("design.fixation_ms %v is not a valid range", c.Design.FixationMS)
	}
	if c.Design.TutorialLength < 1 {
		return fmt.Errorf("design.tutorial_length must be >= 1, got %d", c.Design.TutorialLength)
	}
	if len(c.Factors.ProbeLeft) == 0 {
		return fmt.Errorf("factors.probe_left has no levels")
	}
	if len(c.Factors.Trust) == 0 {
		return fmt.Errorf("factors.trust has no levels")
	}

	// Every trust level needs a non-empty asset pool.
	pools := make(map[string]int)
	for _, a := range c.Assets {
		if a.File == "" {
			return fmt.Errorf("asset manifest entry with empty file")
		}
		pools[a.Trust]++
	}
	for _, level := range c.Factors.Trust {
		if pools[level] == 0 {
			return fmt.Errorf("no assets tagged %q in the manifest", level)
		}
	}

	return nil
}
