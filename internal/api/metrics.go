package api

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/Defantinis/flowlens/internal/events"
	"github.com/Defantinis/flowlens/internal/version"
)

var metricsState = &MetricsState{}

// MetricsState holds runtime metrics for the /metrics endpoint.
type MetricsState struct {
	mu            sync.RWMutex
	startTime     time.Time
	serviceName   string
	analysesTotal int64
}

// InitMetrics initializes the metrics system. Must be called at startup.
func InitMetrics() {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.startTime = time.Now()
	metricsState.analysesTotal = 0
}

// SetServiceName sets the service name used in metric labels and alerts.
func SetServiceName(name string) {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.serviceName = name
}

// GetServiceName returns the current service name.
func GetServiceName() string {
	metricsState.mu.RLock()
	defer metricsState.mu.RUnlock()
	return metricsState.serviceName
}

// AddAnalysis increments the completed-analyses counter. Called by the HTTP
// analyze endpoint and the MQTT bridge.
func AddAnalysis() {
	metricsState.mu.Lock()
	metricsState.analysesTotal++
	metricsState.mu.Unlock()
}

// AnalysesTotal returns the number of analyses completed since startup.
func AnalysesTotal() int64 {
	metricsState.mu.RLock()
	defer metricsState.mu.RUnlock()
	return metricsState.analysesTotal
}

// metricsHandler returns Prometheus-compatible metrics in text format.
func metricsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	metricsState.mu.RLock()
	startTime := metricsState.startTime
	serviceName := metricsState.serviceName
	analysesTotal := metricsState.analysesTotal
	metricsState.mu.RUnlock()

	uptime := time.Since(startTime).Seconds()
	eventsTotal := events.TotalCount()

	readiness.mu.RLock()
	analyzerReady := readiness.analyzerReady
	mqttConnected := readiness.mqttConnected
	postgresConnected := readiness.postgresConnected
	readiness.mu.RUnlock()

	wsClients := events.SubscriberCount()

	analyzerReadyVal := 0
	if analyzerReady {
		analyzerReadyVal = 1
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

	labels := fmt.Sprintf(`service="%s",instance="%s",version="%s"`, serviceName, hostname, version.Version)

	writeMetric("flowlens_uptime_seconds", "gauge",
		"Number of seconds since the service started", uptime, labels)

	writeMetric("flowlens_analyzer_ready", "gauge",
		"Whether the analyzer is ready (1) or not (0)", analyzerReadyVal, labels)

	writeMetric("flowlens_analyses_total", "counter",
		"Total number of workflow analyses completed since startup", analysesTotal, labels)

	writeMetric("flowlens_events_total", "counter",
		"Total number of events emitted since startup", eventsTotal, labels)

	writeMetric("flowlens_mqtt_connected", "gauge",
		"Whether the MQTT broker is connected (1) or not (0)", mqttConnectedVal, labels)

	writeMetric("flowlens_postgres_connected", "gauge",
		"Whether PostgreSQL is connected (1) or not (0)", postgresConnectedVal, labels)

	writeMetric("flowlens_ws_clients", "gauge",
		"Number of active WebSocket client connections", wsClients, labels)
}
