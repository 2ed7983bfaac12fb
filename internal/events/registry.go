package events

import "fmt"

var allowedEvents = map[string]struct{}{
	// session
	"session.started":   {},
	"session.completed": {},
	"session.reset":     {},
	"session.restored":  {},

	// trial lifecycle
	"trial.prepared": {},
	"trial.started":  {},
	"trial.loaded":   {},
	"trial.finished": {},

	// blocks and tutorial
	"block.completed":    {},
	"tutorial.completed": {},
	"tutorial.skipped":   {},

	// operator
	"operator.skip_tutorial": {},
	"operator.pause":         {},
	"operator.resume":        {},

	// renderer (presentation client)
	"renderer.connected":    {},
	"renderer.disconnected": {},
	"renderer.error":        {},

	// system
	"system.startup":  {},
	"system.shutdown": {},
	"system.error":    {},
}

func Validate(event string) error {
	if _, ok := allowedEvents[event]; !ok {
		return fmt.Errorf("unknown event: %s", event)
	}
	return nil
}
