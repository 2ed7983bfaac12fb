package session

import (
	"github.com/perceptlab/toj-engine/internal/events"
	"github.com/perceptlab/toj-engine/internal/storage/postgres"
	"github.com/perceptlab/toj-engine/internal/timeline"
)

// DefaultRestoreLimit is the default number of events to load for restore.
const DefaultRestoreLimit = 1000

// RestoredState is the minimal session position reconstructed from the
// event log.
type RestoredState struct {
	FinishedTrials int
	Completed      bool
}

// RestoreFromEvents loads a session's events from Postgres and
// reconstructs its timeline position. Returns nil state if the client
// is nil or no relevant events exist.
func RestoreFromEvents(client *postgres.Client, sessionID string, limit int) (*RestoredState, int, error) {
	if client == nil {
		return nil, 0, nil
	}

	if limit <= 0 {
		limit = DefaultRestoreLimit
	}

	rows, err := client.QuerySession(sessionID, limit)
	if err != nil {
		return nil, 0, err
	}

	if len(rows) == 0 {
		return nil, 0, nil
	}

	return StateFromRows(rows), len(rows), nil
}

// StateFromRows folds event rows (any order) into a restored state.
func StateFromRows(rows []postgres.EventRow) *RestoredState {
	state := &RestoredState{}
	for _, row := range rows {
		switch row.Event {
		case "trial.finished":
			state.FinishedTrials++
		case "session.completed":
			state.Completed = true
		case "session.reset":
			state.FinishedTrials = 0
			state.Completed = false
		}
	}
	return state
}

// ApplyRestoredState fast-forwards the cursor past the trials the
// participant already finished. It does not re-emit trial events or
// regenerate their conditions.
func (r *Runtime) ApplyRestoredState(state *RestoredState) error {
	if state == nil || (state.FinishedTrials == 0 && !state.Completed) {
		return nil
	}

	r.mu.Lock()

	if state.Completed {
		r.cursor = len(r.steps)
	} else {
		remaining := state.FinishedTrials
		cursor := 0
		for cursor < len(r.steps) && remaining > 0 {
			if r.steps[cursor].Type == timeline.StepTrial {
				remaining--
			}
			cursor++
		}
		r.cursor = cursor
	}
	cursor := r.cursor
	r.mu.Unlock()

	events.Emit("info", "session.restored", "", map[string]interface{}{
		"session_id":      r.id,
		"finished_trials": state.FinishedTrials,
		"cursor":          cursor,
		"completed":       state.Completed,
	})

	return nil
}
