package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Defantinis/flowlens/internal/analysis"
	"github.com/Defantinis/flowlens/internal/events"
	"github.com/Defantinis/flowlens/internal/storage/postgres"
	"github.com/Defantinis/flowlens/internal/workflow"
)

// maxAnalyzeBody bounds the accepted workflow document size.
const maxAnalyzeBody = 4 << 20

var (
	depsMu   sync.RWMutex
	analyzer *analysis.Analyzer
	store    *postgres.Client
)

// SetAnalyzer sets the analyzer used by the analyze endpoint.
func SetAnalyzer(a *analysis.Analyzer) {
	depsMu.Lock()
	analyzer = a
	depsMu.Unlock()
}

// SetStore sets the report store. May stay nil; reports are then not
// persisted and the reports endpoint returns 503.
func SetStore(c *postgres.Client) {
	depsMu.Lock()
	store = c
	depsMu.Unlock()
}

func currentAnalyzer() *analysis.Analyzer {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return analyzer
}

func currentStore() *postgres.Client {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return store
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
		Service:   "flowlens-api",
		Hostname:  host,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// AnalyzeResponse is the JSON body returned by the analyze endpoint.
type AnalyzeResponse struct {
	ID       string            `json:"id,omitempty"`
	Workflow string            `json:"workflow,omitempty"`
	Active   bool              `json:"active,omitempty"`
	Metadata analysis.Metadata `json:"metadata"`
	Summary  string            `json:"summary,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
	Error    string            `json:"error,omitempty"`
}

func analyzeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(AnalyzeResponse{Error: "method not allowed"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxAnalyzeBody))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(AnalyzeResponse{Error: "failed to read request body"})
		return
	}

	wf, err := workflow.Parse(body)
	if err != nil {
		events.Emit("warning", "workflow.rejected", "", map[string]interface{}{
			"error": err.Error(),
		})
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(AnalyzeResponse{Error: err.Error()})
		return
	}

	g, err := workflow.NewGraph(wf)
	if err != nil {
		events.Emit("warning", "workflow.rejected", "", map[string]interface{}{
			"workflow": wf.Name,
			"error":    err.Error(),
		})
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(AnalyzeResponse{Error: err.Error()})
		return
	}

	a := currentAnalyzer()
	if a == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(AnalyzeResponse{Error: "analyzer not ready"})
		return
	}

	var warnings []string
	for _, refErr := range g.CheckReferences() {
		warnings = append(warnings, refErr.Error())
	}

	md := a.Analyze(g)
	summary := analysis.Summary(wf.Name, wf.Active, md)
	resp := AnalyzeResponse{
		ID:       uuid.NewString(),
		Workflow: wf.Name,
		Active:   wf.Active,
		Metadata: md,
		Summary:  summary,
		Warnings: warnings,
	}

	AddAnalysis()
	events.Emit("info", "workflow.analyzed", "", map[string]interface{}{
		"workflow":   wf.Name,
		"nodes":      md.NodeCount,
		"complexity": md.EstimatedComplexity,
		"has_loops":  md.HasLoops,
	})

	if s := currentStore(); s != nil {
		saveReport(s, resp)
	}

	_ = json.NewEncoder(w).Encode(resp)
}

func saveReport(s *postgres.Client, resp AnalyzeResponse) {
	mdJSON, err := json.Marshal(resp.Metadata)
	if err != nil {
		log.Printf("failed to marshal metadata for report %s: %v", resp.ID, err)
		return
	}

	row := postgres.ReportRow{
		ID:        resp.ID,
		Workflow:  resp.Workflow,
		Metadata:  mdJSON,
		Summary:   resp.Summary,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.SaveReport(row); err != nil {
		events.Emit("error", "report.save_failed", "", map[string]interface{}{
			"id":    resp.ID,
			"error": err.Error(),
		})
		return
	}

	events.Emit("info", "report.saved", "", map[string]interface{}{
		"id":       resp.ID,
		"workflow": resp.Workflow,
	})
}

func reportsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	s := currentStore()
	if s == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "report store unavailable"})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	reports, err := s.RecentReports(limit)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "failed to query reports"})
		return
	}
	if reports == nil {
		reports = []postgres.ReportRow{}
	}
	_ = json.NewEncoder(w).Encode(reports)
}

func eventsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// persisted=1 serves event history from Postgres instead of the
	// in-memory ring buffer.
	if r.URL.Query().Get("persisted") == "1" {
		client := events.GetPostgresClient()
		if client == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "event store unavailable"})
			return
		}

		limit := 200
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}

		rows, err := client.QueryEvents(limit)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "failed to query events"})
			return
		}
		if rows == nil {
			rows = []postgres.EventRow{}
		}
		_ = json.NewEncoder(w).Encode(rows)
		return
	}

	_ = json.NewEncoder(w).Encode(events.Snapshot())
}

// Readiness state, updated by the service entrypoint as components come up.
var readiness = struct {
	mu                sync.RWMutex
	analyzerReady     bool
	mqttConnected     bool
	mqttOptional      bool
	postgresConnected bool
	postgresOptional  bool
}{}

// SetAnalyzerReady marks the analyzer as ready to serve.
func SetAnalyzerReady(ready bool) {
	readiness.mu.Lock()
	readiness.analyzerReady = ready
	readiness.mu.Unlock()
}

// SetMQTTState records the MQTT bridge state. optional marks the broker as a
// best-effort dependency that never fails readiness.
func SetMQTTState(connected, optional bool) {
	readiness.mu.Lock()
	readiness.mqttConnected = connected
	readiness.mqttOptional = optional
	readiness.mu.Unlock()
}

// SetPostgresState records the report store state, with the same optional
// semantics as SetMQTTState.
func SetPostgresState(connected, optional bool) {
	readiness.mu.Lock()
	readiness.postgresConnected = connected
	readiness.postgresOptional = optional
	readiness.mu.Unlock()
}

type CheckResult struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Ready  bool                   `json:"ready"`
	Checks map[string]CheckResult `json:"checks"`
}

func checkStatus(connected, optional bool) (string, bool) {
	if connected {
		return "ok", true
	}
	if optional {
		return "optional", true
	}
	return "unavailable", false
}

func readyHandler(w http.ResponseWriter, r *http.Request) {
	readiness.mu.RLock()
	analyzerReady := readiness.analyzerReady
	mqttConnected := readiness.mqttConnected
	mqttOptional := readiness.mqttOptional
	postgresConnected := readiness.postgresConnected
	postgresOptional := readiness.postgresOptional
	readiness.mu.RUnlock()

	resp := ReadinessResponse{
		Ready:  true,
		Checks: make(map[string]CheckResult),
	}

	if analyzerReady {
		resp.Checks["analyzer"] = CheckResult{Status: "ok"}
	} else {
		resp.Checks["analyzer"] = CheckResult{Status: "unavailable"}
		resp.Ready = false
	}

	status, ok := checkStatus(mqttConnected, mqttOptional)
	resp.Checks["mqtt"] = CheckResult{Status: status}
	resp.Ready = resp.Ready && ok

	status, ok = checkStatus(postgresConnected, postgresOptional)
	resp.Checks["postgres"] = CheckResult{Status: status}
	resp.Ready = resp.Ready && ok

	w.Header().Set("Content-Type", "application/json")
	if !resp.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// ListenAndServe starts the API server on the given port.
// It blocks until the server exits. TLS is used when configured via
// environment variables (see InitTLS).
func ListenAndServe(port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler)
	mux.HandleFunc("/analyze", analyzeHandler)
	mux.HandleFunc("/reports", reportsHandler)
	mux.HandleFunc("/events", eventsHandler)
	mux.HandleFunc("/ws/events", wsEventsHandler)
	mux.HandleFunc("/metrics", metricsHandler)

	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // ws endpoint streams indefinitely
	}

	if IsTLSEnabled() {
		cfg := GetTLSConfig()
		log.Printf("API listening on %s (TLS)\n", addr)
		return srv.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
	}

	log.Printf("API listening on %s\n", addr)
	return srv.ListenAndServe()
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
