package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Defantinis/flowlens/internal/events"
)

// clearTLSEnv prevents TLS initialization from trying to load nonexistent certs.
func clearTLSEnv(t *testing.T) {
	t.Setenv("FLOWLENS_TLS_CERT", "")
	t.Setenv("FLOWLENS_TLS_KEY", "")
	SetTLSConfigForTest(nil)
}

// waitFor polls a condition until it returns true or timeout expires.
func waitFor(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("timeout waiting for: %s", msg)
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) events.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	var e events.Event
	if err := json.Unmarshal(msg, &e); err != nil {
		t.Fatalf("failed to unmarshal event: %v", err)
	}
	return e
}

func TestWebSocketReceivesRecentEvents(t *testing.T) {
	clearTLSEnv(t)
	events.Clear()

	for i := 0; i < 5; i++ {
		events.Emit("info", "workflow.analyzed", "", map[string]interface{}{"i": i})
	}

	server := httptest.NewServer(http.HandlerFunc(wsEventsHandler))
	defer server.Close()

	conn := dialWS(t, server)
	defer conn.Close()

	for received := 0; received < 5; received++ {
		e := readEvent(t, conn)
		if e.Name != "workflow.analyzed" {
			t.Errorf("expected 'workflow.analyzed', got '%s'", e.Name)
		}
	}
}

func TestWebSocketReceivesNewEvents(t *testing.T) {
	clearTLSEnv(t)
	events.Clear()

	server := httptest.NewServer(http.HandlerFunc(wsEventsHandler))
	defer server.Close()

	conn := dialWS(t, server)
	defer conn.Close()

	go func() {
		time.Sleep(50 * time.Millisecond)
		events.Emit("info", "report.saved", "", map[string]interface{}{"id": "r-42"})
	}()

	e := readEvent(t, conn)
	if e.Name != "report.saved" {
		t.Errorf("expected 'report.saved', got '%s'", e.Name)
	}
	if e.Fields["id"] != "r-42" {
		t.Errorf("expected id 'r-42', got '%v'", e.Fields["id"])
	}
}

func TestWebSocketDisconnectCleansUp(t *testing.T) {
	clearTLSEnv(t)
	events.Clear()
	events.CloseAllSubscribers()

	server := httptest.NewServer(http.HandlerFunc(wsEventsHandler))
	defer server.Close()

	conn := dialWS(t, server)

	go func() {
		time.Sleep(20 * time.Millisecond)
		events.Emit("info", "workflow.analyzed", "", map[string]interface{}{"test": "cleanup"})
	}()

	if e := readEvent(t, conn); e.Name != "workflow.analyzed" {
		t.Errorf("expected 'workflow.analyzed', got '%s'", e.Name)
	}

	conn.Close()

	// Emit events to trigger the writer goroutine to notice the close.
	for i := 0; i < 5; i++ {
		events.Emit("info", "workflow.analyzed", "", nil)
		time.Sleep(50 * time.Millisecond)
	}

	waitFor(t, 5*time.Second, func() bool {
		return events.SubscriberCount() == 0
	}, "subscriber count to return to 0 after close")
}

func TestWebSocketMultipleClients(t *testing.T) {
	clearTLSEnv(t)
	events.Clear()

	server := httptest.NewServer(http.HandlerFunc(wsEventsHandler))
	defer server.Close()

	conn1 := dialWS(t, server)
	defer conn1.Close()
	conn2 := dialWS(t, server)
	defer conn2.Close()

	go func() {
		time.Sleep(50 * time.Millisecond)
		events.Emit("info", "workflow.analyzed", "", map[string]interface{}{"workflow": "Invoice Sync"})
	}()

	for i, conn := range []*websocket.Conn{conn1, conn2} {
		e := readEvent(t, conn)
		if e.Name != "workflow.analyzed" {
			t.Errorf("client%d: expected 'workflow.analyzed', got '%s'", i+1, e.Name)
		}
	}
}
