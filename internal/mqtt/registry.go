package mqtt

import (
	"sync"
	"time"
)

// RegisteredRenderer holds runtime information about a registered
// presentation client.
type RegisteredRenderer struct {
	ID           string
	Kind         string
	CommandTopic string // topics.subscribe from registration
	EventTopic   string // topics.publish from registration
	Capabilities []string
	HeartbeatSec int
	LastSeen     time.Time
}

// RendererRegistry maps renderer IDs to their MQTT topics and metadata.
type RendererRegistry struct {
	mu        sync.RWMutex
	renderers map[string]*RegisteredRenderer
}

// NewRendererRegistry creates a new empty renderer registry.
func NewRendererRegistry() *RendererRegistry {
	return &RendererRegistry{
		renderers: make(map[string]*RegisteredRenderer),
	}
}

// RegisterFromPayload adds or refreshes a renderer from its
// registration message.
func (r *RendererRegistry) RegisterFromPayload(payload *RegistrationPayload, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.renderers[payload.Renderer.ID] = &RegisteredRenderer{
		ID:           payload.Renderer.ID,
		Kind:         payload.Renderer.Kind,
		CommandTopic: payload.Topics.Subscribe,
		EventTopic:   payload.Topics.Publish,
		Capabilities: append([]string{}, payload.Capabilities...),
		HeartbeatSec: payload.Renderer.HeartbeatSec,
		LastSeen:     now,
	}
}

// Touch refreshes a renderer's last-seen time. Returns false if the
// renderer is not registered.
func (r *RendererRegistry) Touch(id string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ren, ok := r.renderers[id]
	if !ok {
		return false
	}
	ren.LastSeen = now
	return true
}

// Unregister removes a renderer from the registry.
func (r *RendererRegistry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.renderers, id)
}

// Get returns a renderer by ID, or nil if not found. The result is a
// copy; mutations do not reach the registry.
func (r *RendererRegistry) Get(id string) *RegisteredRenderer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ren, ok := r.renderers[id]; ok {
		cpy := *ren
		cpy.Capabilities = append([]string{}, ren.Capabilities...)
		return &cpy
	}
	return nil
}

// Exists returns true if the renderer is registered.
func (r *RendererRegistry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.renderers[id]
	return ok
}

// GetCommandTopic returns the command topic for a renderer, or empty
// string if not found.
func (r *RendererRegistry) GetCommandTopic(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ren, ok := r.renderers[id]; ok {
		return ren.CommandTopic
	}
	return ""
}

// All returns a copy of all registered renderers.
func (r *RendererRegistry) All() []*RegisteredRenderer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*RegisteredRenderer, 0, len(r.renderers))
	for _, ren := range r.renderers {
		cpy := *ren
		cpy.Capabilities = append([]string{}, ren.Capabilities...)
		result = append(result, &cpy)
	}
	return result
}

// Stale returns the renderers whose last heartbeat is older than their
// declared interval times the grace multiplier.
func (r *RendererRegistry) Stale(now time.Time, graceMultiplier int) []*RegisteredRenderer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stale []*RegisteredRenderer
	for _, ren := range r.renderers {
		if ren.HeartbeatSec <= 0 {
			continue
		}
		deadline := time.Duration(ren.HeartbeatSec*graceMultiplier) * time.Second
		if now.Sub(ren.LastSeen) > deadline {
			cpy := *ren
			cpy.Capabilities = append([]string{}, ren.Capabilities...)
			stale = append(stale, &cpy)
		}
	}
	return stale
}

// Clear removes all renderers from the registry.
func (r *RendererRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers = make(map[string]*RegisteredRenderer)
}
