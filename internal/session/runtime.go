// Package session runs one participant session over an assembled
// timeline: a forward-only cursor, presentation-time condition
// generation, lifecycle fan-out and the repeat-participant tutorial
// shortcut.
package session

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/perceptlab/toj-engine/internal/condition"
	"github.com/perceptlab/toj-engine/internal/config"
	"github.com/perceptlab/toj-engine/internal/design"
	"github.com/perceptlab/toj-engine/internal/events"
	"github.com/perceptlab/toj-engine/internal/timeline"
)

// repeatCutoff is the tutorial trial count after which a returning
// participant may leave the tutorial early.
const repeatCutoff = 10

// Lifecycle phases reported by the renderer, in order, once per trial.
const (
	PhaseStarted  = "started"
	PhaseLoaded   = "loaded"
	PhaseFinished = "finished"
)

// LifecycleNotifier receives fire-and-forget trial lifecycle
// notifications. The MQTT publisher implements it; tests substitute
// their own.
type LifecycleNotifier interface {
	PublishLifecycle(sessionID, phase string, trialIndex, blockIndex int, tutorial bool)
}

// Runtime manages timeline execution for one session. Steps are handed
// out strictly in order; there are no backward transitions.
type Runtime struct {
	mu sync.Mutex

	id                string
	steps             []timeline.Step
	cursor            int
	gen               *condition.Generator
	notifier          LifecycleNotifier
	repeatParticipant bool
}

// New builds a session runtime from the experiment configuration:
// tutorial and main designs are expanded and the full timeline is
// assembled up front; visual conditions are not.
func New(cfg *config.ExperimentConfig, repeatParticipant bool, rng *rand.Rand) (*Runtime, error) {
	mainFactors := cfg.MainFactors()

	mainRecords, err := design.Build(mainFactors, cfg.Design.Repetitions, cfg.Assets, rng)
	if err != nil {
		return nil, err
	}
	tutorialRecords, err := design.BuildTutorial(cfg.TutorialFactors(), cfg.Design.TutorialLength, cfg.Assets, rng)
	if err != nil {
		return nil, err
	}

	steps, err := timeline.AssembleSession(tutorialRecords, mainRecords, timeline.ComputeBlockLength(mainFactors))
	if err != nil {
		return nil, err
	}

	gen := condition.NewGenerator(condition.Params{
		Alpha:       cfg.Design.Alpha,
		SOASet:      cfg.SOASet(),
		FixationMin: cfg.Design.FixationMS[0],
		FixationMax: cfg.Design.FixationMS[1],
	}, rng)

	return &Runtime{
		id:                uuid.New().String(),
		steps:             steps,
		gen:               gen,
		repeatParticipant: repeatParticipant,
	}, nil
}

// SetNotifier attaches the lifecycle notifier.
func (r *Runtime) SetNotifier(n LifecycleNotifier) {
	r.mu.Lock()
	r.notifier = n
	r.mu.Unlock()
}

// ID returns the session identifier.
func (r *Runtime) ID() string {
	return r.id
}

// Done reports whether the timeline is exhausted.
func (r *Runtime) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor >= len(r.steps)
}

// StepCount returns the total number of timeline steps.
func (r *Runtime) StepCount() int {
	return len(r.steps)
}

// NextStep returns the next timeline step and advances the cursor.
// Trial steps get their visual condition materialized here, at
// presentation time, never earlier.
func (r *Runtime) NextStep() (*StepView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cursor >= len(r.steps) {
		return &StepView{SessionID: r.id, Done: true}, nil
	}

	step := r.steps[r.cursor]
	r.cursor++

	view := viewOf(r.id, step)

	switch step.Type {
	case timeline.StepTrial:
		cond := r.gen.Generate(step.Record.ProbeLeft)
		view.Condition = &cond
		events.Emit("info", "trial.prepared", "", map[string]interface{}{
			"session_id":  r.id,
			"trial_index": step.TrialIndex,
			"block_index": step.BlockIndex,
			"tutorial":    step.Tutorial,
			"probe_left":  step.Record.ProbeLeft,
			"trust":       step.Record.Trust,
			"soa":         step.Record.SOA,
		})

	case timeline.StepPause:
		events.Emit("info", "block.completed", "", map[string]interface{}{
			"session_id":   r.id,
			"block_index":  step.BlockIndex,
			"total_blocks": step.TotalBlocks,
		})

	case timeline.StepTutorialComplete:
		events.Emit("info", "tutorial.completed", "", map[string]interface{}{
			"session_id": r.id,
		})

	case timeline.StepFinal:
		events.Emit("info", "session.completed", "", map[string]interface{}{
			"session_id": r.id,
		})
	}

	return view, nil
}

// Lifecycle handles one renderer-reported trial lifecycle notification.
// The event is re-emitted and published over MQTT. On a finished
// tutorial trial it evaluates the repeat-participant shortcut: once a
// returning participant has finished a feedback trial at or past the
// cutoff, the rest of the tutorial is skipped.
func (r *Runtime) Lifecycle(phase string, trialIndex int, feedbackShown bool) error {
	if phase != PhaseStarted && phase != PhaseLoaded && phase != PhaseFinished {
		return fmt.Errorf("session: unknown lifecycle phase %q", phase)
	}

	r.mu.Lock()
	step, ok := r.trialStep(trialIndex)
	notifier := r.notifier
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("session: lifecycle for unknown trial index %d", trialIndex)
	}

	events.Emit("info", "trial."+phase, "", map[string]interface{}{
		"session_id":  r.id,
		"trial_index": trialIndex,
		"block_index": step.BlockIndex,
		"tutorial":    step.Tutorial,
	})

	if notifier != nil {
		notifier.PublishLifecycle(r.id, phase, trialIndex, step.BlockIndex, step.Tutorial)
	}

	if phase == PhaseFinished && step.Tutorial && feedbackShown &&
		r.repeatParticipant && trialIndex >= repeatCutoff-1 {
		r.skipToTutorialGate("repeat participant")
	}

	return nil
}

// SkipTutorial jumps the cursor to the tutorial gate on operator
// request.
func (r *Runtime) SkipTutorial() {
	r.skipToTutorialGate("operator")
}

func (r *Runtime) skipToTutorialGate(reason string) {
	r.mu.Lock()

	skipped := 0
	for r.cursor < len(r.steps) {
		s := r.steps[r.cursor]
		if s.Type != timeline.StepTrial || !s.Tutorial {
			break
		}
		r.cursor++
		skipped++
	}
	r.mu.Unlock()

	if skipped > 0 {
		events.Emit("info", "tutorial.skipped", "", map[string]interface{}{
			"session_id":     r.id,
			"skipped_trials": skipped,
			"reason":         reason,
		})
	}
}

// trialStep finds the trial step with the given timeline index.
// Callers hold r.mu.
func (r *Runtime) trialStep(trialIndex int) (timeline.Step, bool) {
	for _, s := range r.steps {
		if s.Type == timeline.StepTrial && s.TrialIndex == trialIndex {
			return s, true
		}
	}
	return timeline.Step{}, false
}
