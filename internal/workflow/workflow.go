package workflow

// Workflow is the top-level document describing a declarative workflow:
// a named list of processing nodes plus the directed connections between them.
type Workflow struct {
	Name        string                 `json:"name"`
	Active      bool                   `json:"active"`
	Nodes       []Node                 `json:"nodes"`
	Connections map[string]NodeOutputs `json:"connections"`
}

// Node is a single named unit of work. The name is the node's identity and
// must be unique within a workflow; parameters are opaque to the analyzer.
type Node struct {
	Name        string                 `json:"name"`
	Type        string                 `json:"type"`
	TypeVersion float64                `json:"typeVersion,omitempty"`
	Position    [2]float64             `json:"position,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// NodeOutputs maps an output slot label to its wires. The outer slice is one
// entry per parallel output of the slot; the inner slice holds the targets
// wired to that output.
type NodeOutputs map[string][][]ConnectionTarget

// ConnectionTarget describes one end of a directed edge: the target node,
// its input slot label, and the input index within that slot.
type ConnectionTarget struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}
