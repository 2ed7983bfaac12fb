package mqtt

import (
	"sync"
	"time"

	"github.com/perceptlab/toj-engine/internal/events"
)

// staleGraceMultiplier: a renderer is stale after missing this many
// heartbeat intervals.
const staleGraceMultiplier = 3

// Monitor periodically sweeps the renderer registry and emits
// renderer.disconnected for stale clients.
type Monitor struct {
	registry *RendererRegistry
	interval time.Duration

	mu       sync.Mutex
	stopped  chan struct{}
	stopOnce sync.Once
	// reported tracks which renderers already got a disconnect event,
	// so a dead client is reported once, not every sweep.
	reported map[string]bool
}

// NewMonitor creates a monitor over the given registry.
func NewMonitor(registry *RendererRegistry, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Monitor{
		registry: registry,
		interval: interval,
		stopped:  make(chan struct{}),
		reported: make(map[string]bool),
	}
}

// Start runs the sweep loop in a goroutine until Stop is called.
func (m *Monitor) Start() {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stopped:
				return
			case <-ticker.C:
				m.Sweep(time.Now())
			}
		}
	}()
}

// Stop terminates the sweep loop.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopped) })
}

// Sweep checks for stale renderers once. Exposed for tests.
func (m *Monitor) Sweep(now time.Time) {
	stale := m.registry.Stale(now, staleGraceMultiplier)

	m.mu.Lock()
	defer m.mu.Unlock()

	staleIDs := make(map[string]bool, len(stale))
	for _, ren := range stale {
		staleIDs[ren.ID] = true
		if m.reported[ren.ID] {
			continue
		}
		m.reported[ren.ID] = true
		events.Emit("warn", "renderer.disconnected", "heartbeat missed", map[string]interface{}{
			"renderer_id": ren.ID,
			"last_seen":   ren.LastSeen.UTC().Format(time.RFC3339),
		})
	}

	// A renderer that came back clears its reported mark.
	for id := range m.reported {
		if !staleIDs[id] {
			delete(m.reported, id)
		}
	}
}
