// Package condition materializes the full per-trial stimulus
// specification: target colors, quadrant placement, grid positions,
// orientation and distractor timing.
package condition

import (
	"github.com/perceptlab/toj-engine/internal/colorspace"
	"github.com/perceptlab/toj-engine/internal/quadrant"
)

// Target is one visual stimulus instance. Created fresh per trial,
// immutable afterwards.
type Target struct {
	Color    colorspace.Color  `json:"color"`
	Quadrant quadrant.Quadrant `json:"quadrant"`
	IsProbe  bool              `json:"is_probe"`
	GridPos  [2]int            `json:"grid_pos"`
}

// TargetPair groups the two targets of one temporal-order comparison.
// Exactly one of Primary/Secondary carries the probe flag.
type TargetPair struct {
	Primary   Target `json:"primary"`
	Secondary Target `json:"secondary"`
	// PairIndex is 0 for the task-relevant pair, 1 for the distractor.
	PairIndex int `json:"pair_index"`
	// FixationTime is the randomized pre-flash duration in milliseconds.
	FixationTime int `json:"fixation_time"`
}

// Condition is the full stimulus specification for one trial.
type Condition struct {
	Pairs [2]TargetPair `json:"target_pairs"`
	// Rotation is the global bar orientation in degrees, one of the
	// 18 discrete 10-degree steps.
	Rotation int `json:"rotation"`
	// DistractorSOA is the onset asynchrony applied to the distractor
	// pair, drawn from the main SOA set.
	DistractorSOA float64 `json:"distractor_soa"`
}
