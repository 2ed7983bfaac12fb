package session

import (
	"github.com/perceptlab/toj-engine/internal/condition"
	"github.com/perceptlab/toj-engine/internal/timeline"
)

// StepView is the per-step record exposed to the rendering collaborator.
// For trial steps it carries the full materialized condition together
// with the indices the renderer logs.
type StepView struct {
	SessionID string            `json:"session_id"`
	Type      timeline.StepType `json:"type,omitempty"`
	Done      bool              `json:"done,omitempty"`

	// Trial fields.
	ProbeLeft *bool                `json:"probe_left,omitempty"`
	Trust     string               `json:"trust,omitempty"`
	SOA       *float64             `json:"soa,omitempty"`
	Image     string               `json:"image,omitempty"`
	Rank      int                  `json:"rank,omitempty"`
	Condition *condition.Condition `json:"condition,omitempty"`
	// Feedback is true for tutorial trials: the renderer shows
	// per-trial correctness feedback only there.
	Feedback bool `json:"feedback,omitempty"`

	BlockIndex            int `json:"block_index"`
	TotalBlocks           int `json:"total_blocks"`
	TrialIndexInTimeline  int `json:"trial_index_in_this_timeline"`
	TrialIndexInThisBlock int `json:"trial_index_in_this_block"`

	// AcceptsAnyInput distinguishes the final screen from intermediate
	// pauses and the tutorial gate.
	AcceptsAnyInput bool `json:"accepts_any_input,omitempty"`
	CursorOn        bool `json:"cursor_on,omitempty"`
}

func viewOf(sessionID string, step timeline.Step) *StepView {
	v := &StepView{
		SessionID:             sessionID,
		Type:                  step.Type,
		BlockIndex:            step.BlockIndex,
		TotalBlocks:           step.TotalBlocks,
		TrialIndexInTimeline:  step.TrialIndex,
		TrialIndexInThisBlock: step.TrialIndexInBlock,
		AcceptsAnyInput:       step.AcceptsAnyInput,
		CursorOn:              step.CursorOn,
	}

	if step.Type == timeline.StepTrial && step.Record != nil {
		probeLeft := step.Record.ProbeLeft
		soa := step.Record.SOA
		v.ProbeLeft = &probeLeft
		v.SOA = &soa
		v.Trust = step.Record.Trust
		v.Image = step.Record.Image
		v.Rank = step.Record.Rank
		v.Feedback = step.Tutorial
	}

	return v
}
