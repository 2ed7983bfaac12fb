package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// LifecycleMessage is the fire-and-forget notification published for
// each trial lifecycle hook (start, load, finish).
type LifecycleMessage struct {
	SessionID  string `json:"session_id"`
	Phase      string `json:"phase"`
	TrialIndex int    `json:"trial_index"`
	BlockIndex int    `json:"block_index"`
	Tutorial   bool   `json:"tutorial"`
	Timestamp  string `json:"ts"`
}

// LifecyclePublisher publishes trial lifecycle notifications to the
// session topic. Failures are logged and dropped; lifecycle publishing
// must never block or fail a trial.
type LifecyclePublisher struct {
	client *Client
}

// NewLifecyclePublisher wraps a connected client.
func NewLifecyclePublisher(client *Client) *LifecyclePublisher {
	return &LifecyclePublisher{client: client}
}

// SessionTopic returns the lifecycle topic for a session.
func SessionTopic(sessionID string) string {
	return fmt.Sprintf("toj/session/%s/trial", sessionID)
}

// PublishLifecycle sends one lifecycle notification.
func (p *LifecyclePublisher) PublishLifecycle(sessionID, phase string, trialIndex, blockIndex int, tutorial bool) {
	if p == nil || p.client == nil || !p.client.IsConnected() {
		return
	}

	msg := LifecycleMessage{
		SessionID:  sessionID,
		Phase:      phase,
		TrialIndex: trialIndex,
		BlockIndex: blockIndex,
		Tutorial:   tutorial,
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}

	if err := p.client.Publish(SessionTopic(sessionID), payload); err != nil {
		log.Printf("mqtt: lifecycle publish failed: %v", err)
	}
}
