package api

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/perceptlab/toj-engine/internal/events"
	"github.com/perceptlab/toj-engine/internal/version"
)

// Metrics state
var (
	metricsState = &MetricsState{}
	readiness    = &ReadinessState{}
)

// MetricsState holds runtime metrics for the /metrics endpoint.
type MetricsState struct {
	mu             sync.RWMutex
	startTime      time.Time
	experimentName string
}

// ReadinessState tracks the engine's external connections.
type ReadinessState struct {
	mu                sync.RWMutex
	sessionActive     bool
	mqttConnected     bool
	postgresConnected bool
}

// InitMetrics initializes the metrics system. Must be called at startup.
func InitMetrics() {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.startTime = time.Now()
}

// SetExperimentName sets the experiment name for metrics labels.
func SetExperimentName(name string) {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.experimentName = name
}

// GetExperimentName returns the current experiment name.
func GetExperimentName() string {
	metricsState.mu.RLock()
	defer metricsState.mu.RUnlock()
	return metricsState.experimentName
}

// SetSessionActive records whether a session is running.
func SetSessionActive(active bool) {
	readiness.mu.Lock()
	defer readiness.mu.Unlock()
	readiness.sessionActive = active
}

// SetMQTTConnected records the broker connection state.
func SetMQTTConnected(connected bool) {
	readiness.mu.Lock()
	defer readiness.mu.Unlock()
	readiness.mqttConnected = connected
}

// SetPostgresConnected records the database connection state.
func SetPostgresConnected(connected bool) {
	readiness.mu.Lock()
	defer readiness.mu.Unlock()
	readiness.postgresConnected = connected
}

// metricsHandler returns Prometheus-compatible metrics in text format.
func metricsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	metricsState.mu.RLock()
	startTime := metricsState.startTime
	experimentName := metricsState.experimentName
	metricsState.mu.RUnlock()

	uptime := time.Since(startTime).Seconds()
	eventsTotal := events.TotalCount()

	readiness.mu.RLock()
	sessionActive := readiness.sessionActive
	mqttConnected := readiness.mqttConnected
	postgresConnected := readiness.postgresConnected
	readiness.mu.RUnlock()

	if controller != nil {
		sessionActive = controller.SessionActive()
	}

	wsClients := events.SubscriberCount()

	sessionActiveVal := 0
	if sessionActive {
		sessionActiveVal = 1
	}
	mqttConnectedVal := 0
	if mqttConnected {
		mqttConnectedVal = 1
	}
	postgresConnectedVal := 0
	if postgresConnected {
		postgresConnectedVal = 1
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	writeMetric := func(name, mtype, help string, value interface{}, labels string) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, mtype)
		if labels != "" {
			fmt.Fprintf(w, "%s{%s} %v\n", name, labels, value)
		} else {
			fmt.Fprintf(w, "%s %v\n", name, value)
		}
	}

	labels := fmt.Sprintf(`experiment="%s",instance="%s",version="%s"`, experimentName, hostname, version.Version)

	writeMetric("toj_uptime_seconds", "gauge",
		"Number of seconds since the engine started", uptime, labels)

	writeMetric("toj_session_active", "gauge",
		"Whether a participant session is active (1) or not (0)", sessionActiveVal, labels)

	writeMetric("toj_events_total", "counter",
		"Total number of events emitted since startup", eventsTotal, labels)

	writeMetric("toj_mqtt_connected", "gauge",
		"Whether the MQTT broker is connected (1) or not (0)", mqttConnectedVal, labels)

	writeMetric("toj_postgres_connected", "gauge",
		"Whether PostgreSQL is connected (1) or not (0)", postgresConnectedVal, labels)

	writeMetric("toj_ws_clients", "gauge",
		"Number of active WebSocket client connections", wsClients, labels)
}
