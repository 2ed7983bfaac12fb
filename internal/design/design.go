// Package design expands the experimental factorial design into concrete
// trial records: Cartesian expansion, repetition, shuffling, the reduced
// tutorial variant and trust-tagged image selection.
package design

import (
	"fmt"
	"math/rand"
)

// Trust framing levels.
const (
	TrustLevel    = "trust"
	DistrustLevel = "distrust"
)

// Factors holds the factor levels of the design.
type Factors struct {
	ProbeLeft []bool
	Trust     []string
	SOA       []float64
}

// Cardinality returns the number of cells in one unrepeated pass over
// the design.
func (f Factors) Cardinality() int {
	return len(f.ProbeLeft) * len(f.Trust) * len(f.SOA)
}

func (f Factors) validate() error {
	if len(f.ProbeLeft) == 0 {
		return fmt.Errorf("design: probe_left has no levels")
	}
	if len(f.Trust) == 0 {
		return fmt.Errorf("design: trust has no levels")
	}
	if len(f.SOA) == 0 {
		return fmt.Errorf("design: soa has no levels")
	}
	return nil
}

// TrialRecord is one cell of the expanded design. The visual condition
// is NOT part of the record; it is materialized at presentation time.
type TrialRecord struct {
	ProbeLeft bool    `json:"probe_left"`
	Trust     string  `json:"trust"`
	SOA       float64 `json:"soa"`
	// Image is the framing stimulus asset selected for this trial.
	Image string `json:"image"`
	// Rank is the record's position after shuffling.
	Rank int `json:"rank"`
}

// Asset is one entry of the image manifest, explicitly tagged with its
// trust level rather than inferred from the filename.
type Asset struct {
	File  string `yaml:"file" json:"file"`
	Trust string `yaml:"trust" json:"trust"`
}

// Expand returns the full Cartesian product of the factor levels, in
// level order, without repetition, shuffling or asset assignment.
func Expand(f Factors) []TrialRecord {
	records := make([]TrialRecord, 0, f.Cardinality())
	for _, probeLeft := range f.ProbeLeft {
		for _, trust := range f.Trust {
			for _, soa := range f.SOA {
				records = append(records, TrialRecord{
					ProbeLeft: probeLeft,
					Trust:     trust,
					SOA:       soa,
				})
			}
		}
	}
	return records
}

// Build produces the main-run trial list: the expanded design repeated
// `repetitions` times, shuffled, with ranks and framing images assigned.
func Build(f Factors, repetitions int, assets []Asset, rng *rand.Rand) ([]TrialRecord, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	if repetitions < 1 {
		return nil, fmt.Errorf("design: repetitions must be >= 1, got %d", repetitions)
	}
	pools, err := poolsByTrust(assets, f.Trust)
	if err != nil {
		return nil, err
	}

	base := Expand(f)
	records := make([]TrialRecord, 0, len(base)*repetitions)
	for rep := 0; rep < repetitions; rep++ {
		records = append(records, base...)
	}

	rng.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})

	for i := range records {
		records[i].Rank = i
		pool := pools[records[i].Trust]
		records[i].Image = pool[rng.Intn(len(pool))]
	}

	return records, nil
}

// BuildTutorial produces the fixed-length tutorial list: an unshuffled
// cycle over the reduced design, with framing images assigned.
func BuildTutorial(f Factors, length int, assets []Asset, rng *rand.Rand) ([]TrialRecord, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	if length < 1 {
		return nil, fmt.Errorf("design: tutorial length must be >= 1, got %d", length)
	}
	pools, err := poolsByTrust(assets, f.Trust)
	if err != nil {
		return nil, err
	}

	base := Expand(f)
	records := make([]TrialRecord, length)
	for i := 0; i < length; i++ {
		records[i] = base[i%len(base)]
		records[i].Rank = i
		pool := pools[records[i].Trust]
		records[i].Image = pool[rng.Intn(len(pool))]
	}

	return records, nil
}

// poolsByTrust partitions the manifest by trust tag and verifies every
// requested level has a non-empty pool. An empty pool is a configuration
// error, never a silent fallback.
func poolsByTrust(assets []Asset, levels []string) (map[string][]string, error) {
	pools := make(map[string][]string)
	for _, a := range assets {
		pools[a.Trust] = append(pools[a.Trust], a.File)
	}
	for _, level := range levels {
		if len(pools[level]) == 0 {
			return nil, fmt.Errorf("design: no assets tagged %q in the manifest", level)
		}
	}
	return pools, nil
}
