package workflow

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestLoadWorkflow(t *testing.T) {
	wf, err := Load("testdata/invoice_sync.json")
	if err != nil {
		t.Fatalf("failed to load workflow: %v", err)
	}

	if wf.Name != "Invoice Sync" {
		t.Errorf("expected name 'Invoice Sync', got %q", wf.Name)
	}
	if !wf.Active {
		t.Error("expected workflow to be active")
	}
	if len(wf.Nodes) != 4 {
		t.Errorf("expected 4 nodes, got %d", len(wf.Nodes))
	}
	if len(wf.Connections) != 3 {
		t.Errorf("expected 3 connection sources, got %d", len(wf.Connections))
	}

	targets := wf.Connections["Webhook"]["main"]
	if len(targets) != 1 || len(targets[0]) != 1 {
		t.Fatalf("expected one wire with one target from Webhook, got %v", targets)
	}
	if targets[0][0].Node != "Fetch Invoice" {
		t.Errorf("expected Webhook to connect to 'Fetch Invoice', got %q", targets[0][0].Node)
	}
}

func TestLoadWorkflowNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{"nodes": [`))
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestParseMissingRequiredFields(t *testing.T) {
	cases := []struct {
		name  string
		doc   string
		field string
	}{
		{"missing nodes", `{"connections": {}}`, "nodes"},
		{"missing connections", `{"nodes": []}`, "connections"},
	}

	for _, tc := range cases {
		_, err := Parse([]byte(tc.doc))
		if err == nil {
			t.Fatalf("%s: expected schema error", tc.name)
		}
		if !errors.Is(err, ErrSchema) {
			t.Errorf("%s: expected ErrSchema, got %v", tc.name, err)
		}
		var se *SchemaError
		if !errors.As(err, &se) {
			t.Fatalf("%s: expected *SchemaError, got %T", tc.name, err)
		}
		if se.Field != tc.field {
			t.Errorf("%s: expected field %q, got %q", tc.name, tc.field, se.Field)
		}
	}
}

func TestParseWrongShape(t *testing.T) {
	// nodes must be a list, connections must be a map
	_, err := Parse([]byte(`{"nodes": {"a": 1}, "connections": {}}`))
	if !errors.Is(err, ErrSchema) {
		t.Errorf("expected ErrSchema for non-list nodes, got %v", err)
	}

	_, err = Parse([]byte(`{"nodes": [], "connections": [1, 2]}`))
	if !errors.Is(err, ErrSchema) {
		t.Errorf("expected ErrSchema for non-map connections, got %v", err)
	}
}

func TestParseNoAnalysisBeforeSchemaCheck(t *testing.T) {
	// A document with both required fields but extra unknown fields parses fine.
	wf, err := Parse([]byte(`{"nodes": [], "connections": {}, "settings": {"tz": "UTC"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wf.Nodes) != 0 {
		t.Errorf("expected 0 nodes, got %d", len(wf.Nodes))
	}
}
