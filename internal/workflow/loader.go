package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Parse decodes a workflow document from JSON.
// It returns MalformedError for invalid JSON and SchemaError when the
// required nodes/connections fields are missing or of the wrong shape.
// Referential integrity of connection targets is not checked here; see
// Graph.CheckReferences.
func Parse(data []byte) (*Workflow, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedError{Err: err}
	}

	rawNodes, ok := raw["nodes"]
	if !ok {
		return nil, &SchemaError{Field: "nodes", Msg: "required field missing"}
	}
	rawConns, ok := raw["connections"]
	if !ok {
		return nil, &SchemaError{Field: "connections", Msg: "required field missing"}
	}

	var wf Workflow
	if err := json.Unmarshal(rawNodes, &wf.Nodes); err != nil {
		return nil, &SchemaError{Field: "nodes", Msg: "expected a list of node objects"}
	}
	if err := json.Unmarshal(rawConns, &wf.Connections); err != nil {
		return nil, &SchemaError{Field: "connections", Msg: "expected a map of node outputs"}
	}

	if rawName, ok := raw["name"]; ok {
		if err := json.Unmarshal(rawName, &wf.Name); err != nil {
			return nil, &SchemaError{Field: "name", Msg: "expected a string"}
		}
	}
	if rawActive, ok := raw["active"]; ok {
		if err := json.Unmarshal(rawActive, &wf.Active); err != nil {
			return nil, &SchemaError{Field: "active", Msg: "expected a boolean"}
		}
	}

	return &wf, nil
}

// Load reads and parses a workflow document from a JSON file.
func Load(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}
	return Parse(data)
}
