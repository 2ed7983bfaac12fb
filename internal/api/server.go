package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/perceptlab/toj-engine/internal/events"
	"github.com/perceptlab/toj-engine/internal/session"
)

// Controller is the session surface the HTTP layer drives.
type Controller interface {
	StartSession(repeatParticipant bool) (string, error)
	StopSession() error
	SessionActive() bool
	NextStep() (*session.StepView, error)
	Lifecycle(phase string, trialIndex int, feedbackShown bool) error
	SkipTutorial() error
}

var controller Controller

// SetController sets the session controller used by the endpoints.
func SetController(c Controller) {
	controller = c
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Hostname  string `json:"hostname"`
	Timestamp string `json:"ts"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	resp := HealthResponse{
		Status:    "ok",
		Service:   "toj-engine",
		Hostname:  host,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func eventsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events.Snapshot())
}

type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{OK: false, Error: msg})
}

type StartSessionRequest struct {
	RepeatParticipant bool `json:"repeat_participant"`
}

type StartSessionResponse struct {
	OK        bool   `json:"ok"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

func sessionStartHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if controller == nil {
		writeError(w, http.StatusServiceUnavailable, "engine not ready")
		return
	}

	var req StartSessionRequest
	if r.Body != nil {
		// An empty body means a first-time participant.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	id, err := controller.StartSession(req.RepeatParticipant)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	_ = json.NewEncoder(w).Encode(StartSessionResponse{OK: true, SessionID: id})
}

func sessionStopHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if controller == nil {
		writeError(w, http.StatusServiceUnavailable, "engine not ready")
		return
	}

	if err := controller.StopSession(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	_ = json.NewEncoder(w).Encode(ErrorResponse{OK: true})
}

func sessionStepHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if controller == nil {
		writeError(w, http.StatusServiceUnavailable, "engine not ready")
		return
	}

	view, err := controller.NextStep()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	_ = json.NewEncoder(w).Encode(view)
}

type LifecycleRequest struct {
	Phase         string `json:"phase"`
	TrialIndex    int    `json:"trial_index"`
	FeedbackShown bool   `json:"feedback_shown"`
}

func trialLifecycleHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if controller == nil {
		writeError(w, http.StatusServiceUnavailable, "engine not ready")
		return
	}

	var req LifecycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Phase == "" {
		writeError(w, http.StatusBadRequest, "phase required")
		return
	}

	if err := controller.Lifecycle(req.Phase, req.TrialIndex, req.FeedbackShown); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_ = json.NewEncoder(w).Encode(ErrorResponse{OK: true})
}

func operatorSkipTutorialHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if controller == nil {
		writeError(w, http.StatusServiceUnavailable, "engine not ready")
		return
	}

	if err := controller.SkipTutorial(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	_ = json.NewEncoder(w).Encode(ErrorResponse{OK: true})
}

// NewMux builds the route table. Operator endpoints require operator or
// admin credentials; session control requires admin.
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/metrics", metricsHandler)
	mux.HandleFunc("/events", RequireAnyRole(eventsHandler))
	mux.HandleFunc("/ws/events", wsEventsHandler)
	mux.HandleFunc("/session/start", RequireAdmin(sessionStartHandler))
	mux.HandleFunc("/session/stop", RequireAdmin(sessionStopHandler))
	mux.HandleFunc("/session/step", sessionStepHandler)
	mux.HandleFunc("/trial/lifecycle", trialLifecycleHandler)
	mux.HandleFunc("/operator/skip-tutorial", RequireAnyRole(operatorSkipTutorialHandler))
	return mux
}

// ListenAndServe starts the API server on the given port.
// It blocks until the server exits.
func ListenAndServe(port int) error {
	mux := NewMux()
	addr := fmt.Sprintf(":%d", port)

	if IsTLSEnabled() {
		srv := &http.Server{
			Addr:      addr,
			Handler:   mux,
			TLSConfig: LoadTLSConfig(),
		}
		log.Printf("API listening on %s (TLS)\n", addr)
		return srv.ListenAndServeTLS("", "")
	}

	log.Printf("API listening on %s\n", addr)
	return http.ListenAndServe(addr, mux)
}

// Start starts the API server in a goroutine.
// Errors are logged but do not stop the caller.
func Start(port int) {
	go func() {
		if err := ListenAndServe(port); err != nil {
			log.Printf("api server error: %v", err)
		}
	}()
}
