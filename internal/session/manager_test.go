package session

import (
	"math/rand"
	"testing"

	"github.com/perceptlab/toj-engine/internal/timeline"
)

func newTestManager(t *testing.T, seed int64) *Manager {
	t.Helper()
	m := NewManager(testConfig(), nil)
	m.newRand = func() *rand.Rand { return rand.New(rand.NewSource(seed)) }
	return m
}

func TestManagerStartAndStop(t *testing.T) {
	m := newTestManager(t, 1)

	if m.SessionActive() {
		t.Fatalf("manager active before start")
	}
	if _, err := m.NextStep(); err == nil {
		t.Fatalf("NextStep succeeded without a session")
	}

	id, err := m.StartSession(false)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if id == "" {
		t.Fatalf("empty session id")
	}
	if !m.SessionActive() {
		t.Fatalf("manager not active after start")
	}

	// A second session cannot start while one is in progress.
	if _, err := m.StartSession(false); err == nil {
		t.Errorf("StartSession succeeded with a session in progress")
	}

	if err := m.StopSession(); err != nil {
		t.Fatalf("StopSession failed: %v", err)
	}
	if m.SessionActive() {
		t.Errorf("manager still active after stop")
	}
	if err := m.StopSession(); err == nil {
		t.Errorf("StopSession succeeded twice")
	}
}

func TestManagerSessionIDsDiffer(t *testing.T) {
	m := newTestManager(t, 2)

	a, err := m.StartSession(false)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if err := m.StopSession(); err != nil {
		t.Fatalf("StopSession failed: %v", err)
	}
	b, err := m.StartSession(false)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if a == b {
		t.Errorf("two sessions share id %s", a)
	}
}

func TestManagerRestartAfterCompletion(t *testing.T) {
	m := newTestManager(t, 3)

	if _, err := m.StartSession(false); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	for !m.Current().Done() {
		if _, err := m.NextStep(); err != nil {
			t.Fatalf("NextStep failed: %v", err)
		}
	}

	// A finished session does not block the next participant.
	if _, err := m.StartSession(true); err != nil {
		t.Fatalf("StartSession after completion failed: %v", err)
	}
}

func TestManagerResumeWithoutDatabase(t *testing.T) {
	m := newTestManager(t, 5)

	// Without a Postgres client there is no event log to replay, so
	// resuming starts a fresh session at the beginning.
	id, err := m.ResumeSession("gone-session", false)
	if err != nil {
		t.Fatalf("ResumeSession failed: %v", err)
	}
	if id == "" {
		t.Fatalf("empty session id")
	}
	if !m.SessionActive() {
		t.Fatalf("manager not active after resume")
	}

	v, err := m.NextStep()
	if err != nil {
		t.Fatalf("NextStep failed: %v", err)
	}
	if v.Type != timeline.StepCursor {
		t.Fatalf("first step is %s, want cursor toggle", v.Type)
	}
}

func TestManagerForwardsOperations(t *testing.T) {
	m := newTestManager(t, 4)

	if err := m.SkipTutorial(); err == nil {
		t.Errorf("SkipTutorial succeeded without a session")
	}
	if err := m.Lifecycle(PhaseStarted, 0, false); err == nil {
		t.Errorf("Lifecycle succeeded without a session")
	}

	if _, err := m.StartSession(false); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if err := m.SkipTutorial(); err != nil {
		t.Fatalf("SkipTutorial failed: %v", err)
	}

	v, err := m.NextStep()
	if err != nil {
		t.Fatalf("NextStep failed: %v", err)
	}
	if v.Type != timeline.StepCursor {
		t.Fatalf("first step is %s, want cursor toggle", v.Type)
	}
}
