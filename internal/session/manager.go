package session

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/perceptlab/toj-engine/internal/config"
	"github.com/perceptlab/toj-engine/internal/events"
)

// Manager owns the currently running session. Only one session exists
// at a time; there are no concurrent timelines.
type Manager struct {
	mu       sync.Mutex
	cfg      *config.ExperimentConfig
	notifier LifecycleNotifier
	current  *Runtime

	// newRand is swapped in tests for deterministic sessions.
	newRand func() *rand.Rand
}

// NewManager creates a manager for the given experiment.
func NewManager(cfg *config.ExperimentConfig, notifier LifecycleNotifier) *Manager {
	return &Manager{
		cfg:      cfg,
		notifier: notifier,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// StartSession builds a fresh runtime and makes it current. A session
// already in progress is an error; it must be stopped first.
func (m *Manager) StartSession(repeatParticipant bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && !m.current.Done() {
		return "", fmt.Errorf("session %s is still in progress", m.current.ID())
	}

	rt, err := New(m.cfg, repeatParticipant, m.newRand())
	if err != nil {
		return "", err
	}
	rt.SetNotifier(m.notifier)
	m.current = rt

	events.Emit("info", "session.started", "", map[string]interface{}{
		"session_id":         rt.ID(),
		"experiment_id":      m.cfg.Experiment.ID,
		"repeat_participant": repeatParticipant,
		"steps":              rt.StepCount(),
	})

	return rt.ID(), nil
}

// ResumeSession rebuilds a runtime for an interrupted session and
// fast-forwards it past the trials the participant already finished,
// as recorded in the event log. Without a database this degrades to a
// fresh session.
func (m *Manager) ResumeSession(sessionID string, repeatParticipant bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && !m.current.Done() {
		return "", fmt.Errorf("session %s is still in progress", m.current.ID())
	}

	rt, err := New(m.cfg, repeatParticipant, m.newRand())
	if err != nil {
		return "", err
	}
	rt.SetNotifier(m.notifier)

	state, _, err := RestoreFromEvents(events.GetPostgresClient(), sessionID, DefaultRestoreLimit)
	if err != nil {
		return "", fmt.Errorf("restore of session %s failed: %w", sessionID, err)
	}
	if err := rt.ApplyRestoredState(state); err != nil {
		return "", err
	}
	m.current = rt

	return rt.ID(), nil
}

// StopSession abandons the current session.
func (m *Manager) StopSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return fmt.Errorf("no active session")
	}

	events.Emit("info", "session.reset", "", map[string]interface{}{
		"session_id": m.current.ID(),
	})
	m.current = nil

	return nil
}

// SessionActive returns true while a session is running.
func (m *Manager) SessionActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil && !m.current.Done()
}

// Current returns the active runtime, or nil.
func (m *Manager) Current() *Runtime {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// NextStep forwards to the active runtime.
func (m *Manager) NextStep() (*StepView, error) {
	rt := m.Current()
	if rt == nil {
		return nil, fmt.Errorf("no active session")
	}
	return rt.NextStep()
}

// Lifecycle forwards a renderer lifecycle notification to the active
// runtime.
func (m *Manager) Lifecycle(phase string, trialIndex int, feedbackShown bool) error {
	rt := m.Current()
	if rt == nil {
		return fmt.Errorf("no active session")
	}
	return rt.Lifecycle(phase, trialIndex, feedbackShown)
}

// SkipTutorial forwards the operator override to the active runtime.
func (m *Manager) SkipTutorial() error {
	rt := m.Current()
	if rt == nil {
		return fmt.Errorf("no active session")
	}
	rt.SkipTutorial()
	events.Emit("info", "operator.skip_tutorial", "", map[string]interface{}{
		"session_id": rt.ID(),
	})
	return nil
}
