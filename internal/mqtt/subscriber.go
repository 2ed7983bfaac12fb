package mqtt

import (
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/perceptlab/toj-engine/internal/events"
)

// RegistrationHandler returns a message handler for the registration
// topic: it parses and validates the payload, records the renderer and
// emits renderer.connected.
func RegistrationHandler(registry *RendererRegistry) paho.MessageHandler {
	return func(client paho.Client, msg paho.Message) {
		payload, err := ParseRegistration(msg.Payload())
		if err != nil {
			events.Emit("error", "renderer.error", "invalid registration", map[string]interface{}{
				"topic": msg.Topic(),
				"error": err.Error(),
			})
			return
		}

		if err := ValidateRegistration(payload); err != nil {
			events.Emit("error", "renderer.error", "registration rejected", map[string]interface{}{
				"renderer_id": payload.Renderer.ID,
				"error":       err.Error(),
			})
			return
		}

		registry.RegisterFromPayload(payload, time.Now())

		events.Emit("info", "renderer.connected", "", map[string]interface{}{
			"renderer_id":  payload.Renderer.ID,
			"kind":         payload.Renderer.Kind,
			"capabilities": payload.Capabilities,
		})
	}
}

// HeartbeatTopic is where registered renderers publish heartbeats.
const HeartbeatTopic = "toj/renderer/heartbeat"

// HeartbeatMessage is what renderers publish on their event topic to
// stay registered.
type HeartbeatMessage struct {
	RendererID string `json:"renderer_id"`
	UptimeMS   int64  `json:"uptime_ms"`
}

// HeartbeatHandler refreshes the sender's last-seen time. Heartbeats
// from unknown renderers are ignored; they must register first.
func HeartbeatHandler(registry *RendererRegistry) paho.MessageHandler {
	return func(client paho.Client, msg paho.Message) {
		var hb HeartbeatMessage
		if err := json.Unmarshal(msg.Payload(), &hb); err != nil || hb.RendererID == "" {
			return
		}
		registry.Touch(hb.RendererID, time.Now())
	}
}
