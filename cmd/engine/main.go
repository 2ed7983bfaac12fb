package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/perceptlab/toj-engine/internal/api"
	"github.com/perceptlab/toj-engine/internal/config"
	"github.com/perceptlab/toj-engine/internal/events"
	"github.com/perceptlab/toj-engine/internal/mqtt"
	"github.com/perceptlab/toj-engine/internal/session"
	"github.com/perceptlab/toj-engine/internal/storage/postgres"
	"github.com/perceptlab/toj-engine/internal/version"
)

type LogLine struct {
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Event     string                 `json:"event"`
	Message   string                 `json:"msg,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

func logEvent(level, event, msg string, fields map[string]interface{}) {
	line := LogLine{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Event:     event,
		Message:   msg,
		Fields:    fields,
	}
	b, _ := json.Marshal(line)
	fmt.Println(string(b))
}

func main() {
	configPath := flag.String("config", "experiments/template/experiment.yaml", "path to experiment.yaml")
	resume := flag.String("resume", "", "session id to resume from the event log")
	flag.Parse()

	cfg, err := config.LoadExperimentConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load %s: %v", *configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid experiment config: %v", err)
	}

	hostname, _ := os.Hostname()
	logEvent("info", "system.startup", "engine starting", map[string]interface{}{
		"service":       "toj-engine",
		"version":       version.Version,
		"hostname":      hostname,
		"pid":           os.Getpid(),
		"experiment_id": cfg.Experiment.ID,
	})

	api.InitAuth()
	api.InitTLS()
	api.InitMetrics()
	api.InitAlerts()
	api.SetExperimentName(cfg.Experiment.ID)

	// Postgres event log. The engine degrades gracefully: a missing
	// database means events stay in the in-memory ring buffer only.
	pgClient, err := postgres.New(cfg.Experiment.ID)
	if err != nil {
		logEvent("warn", "system.error", "postgres unavailable, events will not be persisted", map[string]interface{}{
			"error": err.Error(),
		})
		api.SetPostgresConnected(false)
	} else {
		events.SetPostgresClient(pgClient)
		api.SetPostgresConnected(true)
		defer pgClient.Close()
	}

	// MQTT renderer registry. Also optional: without a broker the
	// engine still serves the HTTP step loop.
	registry := mqtt.NewRendererRegistry()
	mqttClient := mqtt.NewClient("toj-engine-" + hostname)
	var publisher *mqtt.LifecyclePublisher
	if mqttClient.StartWithRetry(mqtt.RegistrationTopic, mqtt.RegistrationHandler(registry)) {
		if err := mqttClient.Subscribe(mqtt.HeartbeatTopic, mqtt.HeartbeatHandler(registry)); err != nil {
			log.Printf("mqtt: heartbeat subscribe failed: %v", err)
		}
		publisher = mqtt.NewLifecyclePublisher(mqttClient)
		api.SetMQTTConnected(true)

		monitor := mqtt.NewMonitor(registry, 10*time.Second)
		monitor.Start()
		defer monitor.Stop()
	} else {
		api.SetMQTTConnected(false)
	}

	api.StartAlertMonitor(15 * time.Second)

	manager := session.NewManager(cfg, publisher)
	api.SetController(manager)

	if *resume != "" {
		id, err := manager.ResumeSession(*resume, false)
		if err != nil {
			logEvent("error", "system.error", "session resume failed", map[string]interface{}{
				"session_id": *resume,
				"error":      err.Error(),
			})
		} else {
			logEvent("info", "session.restored", "session resumed", map[string]interface{}{
				"previous_session_id": *resume,
				"session_id":          id,
			})
		}
	}

	events.Emit("info", "system.startup", "engine ready", map[string]interface{}{
		"experiment_id": cfg.Experiment.ID,
		"version":       version.Version,
	})

	port := cfg.UIPort()
	if err := api.ListenAndServe(port); err != nil {
		logEvent("error", "system.shutdown", "api server failed", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}
