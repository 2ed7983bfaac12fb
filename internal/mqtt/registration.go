package mqtt

import (
	"encoding/json"
	"fmt"
)

// RegistrationTopic is where presentation clients announce themselves.
const RegistrationTopic = "toj/renderer/register"

// RegistrationPayload is a v1 renderer registration message.
type RegistrationPayload struct {
	Version  int          `json:"version"`
	Renderer RendererInfo `json:"renderer"`
	// Capabilities the renderer supports, e.g. "touch", "feedback",
	// "fullscreen".
	Capabilities []string       `json:"capabilities"`
	Topics       RendererTopics `json:"topics"`
}

// RendererInfo contains presentation client metadata.
type RendererInfo struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"` // e.g. "browser", "kiosk"
	UserAgent    string `json:"user_agent,omitempty"`
	HeartbeatSec int    `json:"heartbeat_sec"`
}

// RendererTopics defines the MQTT topics a renderer listens and speaks on.
type RendererTopics struct {
	// Publish is where the renderer emits heartbeats and input notices.
	Publish string `json:"publish"`
	// Subscribe is where the renderer expects lifecycle commands.
	Subscribe string `json:"subscribe"`
}

// ParseRegistration parses a registration payload from JSON bytes.
func ParseRegistration(data []byte) (*RegistrationPayload, error) {
	var payload RegistrationPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid registration JSON: %w", err)
	}

	if payload.Version != 1 {
		return nil, fmt.Errorf("unsupported registration version: %d", payload.Version)
	}

	if payload.Renderer.ID == "" {
		return nil, fmt.Errorf("renderer.id is required")
	}

	return &payload, nil
}

// RequiredCapabilities are the capabilities a renderer must declare to
// run a session: it has to place targets into quadrant grids and show
// tutorial feedback.
var RequiredCapabilities = []string{"quadrant_grid", "feedback"}

// ValidateRegistration checks a parsed payload against the required
// capability set. Missing capabilities are errors; extra ones are fine.
func ValidateRegistration(payload *RegistrationPayload) error {
	for _, want := range RequiredCapabilities {
		found := false
		for _, cap := range payload.Capabilities {
			if cap == want {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("renderer %s missing capability: %s", payload.Renderer.ID, want)
		}
	}
	return nil
}
