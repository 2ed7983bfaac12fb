// Package timeline sequences trial records into the experiment timeline:
// tutorial prefix, block segmentation, pause and completion screens.
package timeline

import (
	"fmt"
	"math"

	"github.com/perceptlab/toj-engine/internal/design"
)

// StepType identifies a timeline step.
type StepType string

const (
	StepTrial            StepType = "trial"
	StepPause            StepType = "pause"
	StepTutorialComplete StepType = "tutorial_complete"
	StepFinal            StepType = "final"
	StepCursor           StepType = "cursor"
)

// Step is one element of the assembled timeline.
type Step struct {
	Type StepType `json:"type"`

	// Record is set for trial steps.
	Record *design.TrialRecord `json:"record,omitempty"`
	// Tutorial marks trial steps belonging to the tutorial run.
	// Tutorial trials show per-trial feedback.
	Tutorial bool `json:"tutorial,omitempty"`

	// BlockIndex is 1-based for main-run trials and pauses, 0 for
	// tutorial trials.
	BlockIndex  int `json:"block_index"`
	TotalBlocks int `json:"total_blocks"`
	// TrialIndex counts trial steps across the whole timeline;
	// TrialIndexInBlock restarts at every block boundary. Both are
	// -1 on non-trial steps.
	TrialIndex        int `json:"trial_index"`
	TrialIndexInBlock int `json:"trial_index_in_block"`

	// AcceptsAnyInput is true only on the final screen; pause and
	// tutorial gates require the designated continue action.
	AcceptsAnyInput bool `json:"accepts_any_input,omitempty"`

	// CursorOn is meaningful for cursor steps.
	CursorOn bool `json:"cursor_on,omitempty"`
}

// ComputeBlockLength returns the block length limit: the size of one
// full unrepeated pass over the factorial design, independent of the
// repetition count.
func ComputeBlockLength(f design.Factors) int {
	return f.Cardinality()
}

// ComputeTotalBlocks returns ceil(recordCount / blockLen).
func ComputeTotalBlocks(recordCount, blockLen int) int {
	return int(math.Ceil(float64(recordCount) / float64(blockLen)))
}

// Assemble sequences the main-run records into blocks. A pause screen
// follows every blockLen-th trial except the last; the final screen
// closes the run and accepts any input.
func Assemble(records []design.TrialRecord, blockLen int) ([]Step, error) {
	if blockLen < 1 {
		return nil, fmt.Errorf("timeline: block length must be >= 1, got %d", blockLen)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("timeline: no trial records to assemble")
	}

	totalBlocks := ComputeTotalBlocks(len(records), blockLen)
	steps := make([]Step, 0, len(records)+totalBlocks)

	for i := range records {
		steps = append(steps, Step{
			Type:              StepTrial,
			Record:            &records[i],
			BlockIndex:        i/blockLen + 1,
			TotalBlocks:       totalBlocks,
			TrialIndex:        i,
			TrialIndexInBlock: i % blockLen,
		})

		lastInBlock := i%blockLen == blockLen-1
		lastRecord := i == len(records)-1
		if lastInBlock && !lastRecord {
			steps = append(steps, Step{
				Type:              StepPause,
				BlockIndex:        i/blockLen + 1,
				TotalBlocks:       totalBlocks,
				TrialIndex:        -1,
				TrialIndexInBlock: -1,
			})
		}
	}

	steps = append(steps, Step{
		Type:              StepFinal,
		BlockIndex:        totalBlocks,
		TotalBlocks:       totalBlocks,
		TrialIndex:        -1,
		TrialIndexInBlock: -1,
		AcceptsAnyInput:   true,
	})

	return steps, nil
}

// AssembleSession builds the complete session timeline: cursor off,
// tutorial prefix, tutorial gate, segmented main run, final screen,
// cursor back on. Trial indices run continuously across tutorial and
// main run.
func AssembleSession(tutorial, main []design.TrialRecord, blockLen int) ([]Step, error) {
	if len(tutorial) == 0 {
		return nil, fmt.Errorf("timeline: tutorial run is empty")
	}

	mainSteps, err := Assemble(main, blockLen)
	if err != nil {
		return nil, err
	}

	steps := make([]Step, 0, len(tutorial)+len(mainSteps)+3)
	steps = append(steps, Step{Type: StepCursor, TrialIndex: -1, TrialIndexInBlock: -1})

	for i := range tutorial {
		steps = append(steps, Step{
			Type:              StepTrial,
			Record:            &tutorial[i],
			Tutorial:          true,
			BlockIndex:        0,
			TrialIndex:        i,
			TrialIndexInBlock: i,
		})
	}

	// The tutorial gate requires the designated continue action; it
	// never falls through on arbitrary input.
	steps = append(steps, Step{
		Type:              StepTutorialComplete,
		TrialIndex:        -1,
		TrialIndexInBlock: -1,
	})

	for _, s := range mainSteps {
		if s.Type == StepTrial {
			s.TrialIndex += len(tutorial)
		}
		steps = append(steps, s)
	}

	steps = append(steps, Step{Type: StepCursor, CursorOn: true, TrialIndex: -1, TrialIndexInBlock: -1})

	return steps, nil
}
